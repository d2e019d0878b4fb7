package service

import (
	"Sidekick/internal/fixtures"
	"Sidekick/internal/repo"
	"Sidekick/internal/stats"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	users    *UserService
	docs     *DocumentService
	seeder   *Seeder
	settings *SettingsService
}

// newTestEnv собирает сервисы поверх отдельной in-memory SQLite.
func newTestEnv(t *testing.T, fsys fs.FS) *testEnv {
	t.Helper()
	if fsys == nil {
		fsys = fixtures.FS()
	}
	db, err := repo.InitDB(repo.DBTypeSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(db) })

	userRepo := repo.NewUserRepository(db)
	tagRepo := repo.NewTagRepository(db)
	tx := repo.NewTransactor(db)
	docs := NewDocumentService(userRepo, repo.NewDocumentRepository(db), tagRepo, tx, nil, stats.Nop{})
	seeder := NewSeeder(fsys, docs, nil)
	users := NewUserService(userRepo, docs, tagRepo, tx, seeder, nil, WithBcryptCost(bcrypt.MinCost))
	return &testEnv{
		db:       db,
		users:    users,
		docs:     docs,
		seeder:   seeder,
		settings: NewSettingsService(fsys, docs, nil),
	}
}

// emptyFixtures — FS без стартовых документов и настроек.
func emptyFixtures() fs.FS {
	return fstest.MapFS{}
}

func (e *testEnv) mustCreateUser(t *testing.T, id string) {
	t.Helper()
	_, err := e.users.CreateUser(t.Context(), CreateUserInput{ID: id, Password: "pw-" + id})
	require.NoError(t, err)
}
