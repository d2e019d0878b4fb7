package repo

import (
	"Sidekick/internal/model"
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// newTestDB инициализирует отдельную in-memory SQLite (modernc.org/sqlite) на каждый тест
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	return db
}

func newTestDocument(id, userID, docType, name, date string) *model.Document {
	return &model.Document{
		ID:          id,
		UserID:      userID,
		Type:        docType,
		Name:        name,
		Visibility:  model.VisibilityPrivate,
		CreatedDate: date,
		UpdatedDate: date,
		Properties:  []byte(`{}`),
		Content:     []byte(`{"text":"hello"}`),
	}
}

func TestTransactor_RollbackOnError(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tx := NewTransactor(db)
	ctx := context.Background()

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := users.CreateUser(ctx, &model.User{ID: "alice", PasswordHash: "h", Properties: []byte(`{}`)})
		require.NoError(t, err)
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	_, err = users.GetUserByID(ctx, "alice")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTransactor_NestedReusesOuter(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tx := NewTransactor(db)
	ctx := context.Background()

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := users.CreateUser(ctx, &model.User{ID: "bob", PasswordHash: "h", Properties: []byte(`{}`)})
			return err
		})
	})
	require.NoError(t, err)

	got, err := users.GetUserByID(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, "bob", got.ID)
}

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(log.New(&buf, "", 0))
	sql := func() (string, int64) { return "SELECT * FROM users WHERE id = 'alice'", 0 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), sql, errors.New("disk I/O error"))
	assert.Contains(t, buf.String(), "disk I/O error")
}
