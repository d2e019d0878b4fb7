package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDocumentRepository_CreateGetDelete(t *testing.T) {
	db := newTestDB(t)
	r := NewDocumentRepository(db)
	ctx := context.Background()

	doc := newTestDocument("d1", "alice", "notes", "First", "2024-01-01 10:00:00.000000")
	require.NoError(t, r.Create(ctx, doc))

	got, err := r.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
	assert.JSONEq(t, `{"text":"hello"}`, string(got.Content))

	require.NoError(t, r.Delete(ctx, "d1"))
	_, err = r.GetByID(ctx, "d1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "d1"), gorm.ErrRecordNotFound)
}

func TestDocumentRepository_GetByNameReturnsEarliest(t *testing.T) {
	db := newTestDB(t)
	r := NewDocumentRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newTestDocument("late", "alice", "settings", "chat_settings", "2024-02-01 00:00:00.000000")))
	require.NoError(t, r.Create(ctx, newTestDocument("early", "alice", "settings", "chat_settings", "2024-01-01 00:00:00.000000")))
	require.NoError(t, r.Create(ctx, newTestDocument("other", "bob", "settings", "chat_settings", "2023-01-01 00:00:00.000000")))

	got, err := r.GetByName(ctx, "alice", "chat_settings", "settings")
	require.NoError(t, err)
	assert.Equal(t, "early", got.ID)

	_, err = r.GetByName(ctx, "alice", "chat_settings", "notes")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDocumentRepository_ListOrderAndScope(t *testing.T) {
	db := newTestDB(t)
	r := NewDocumentRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newTestDocument("a", "alice", "notes", "A", "2024-01-01 00:00:00.000000")))
	require.NoError(t, r.Create(ctx, newTestDocument("b", "alice", "notes", "B", "2024-03-01 00:00:00.000000")))
	require.NoError(t, r.Create(ctx, newTestDocument("c", "bob", "notes", "C", "2024-02-01 00:00:00.000000")))
	require.NoError(t, r.Create(ctx, newTestDocument("d", "alice", "chats", "D", "2024-02-01 00:00:00.000000")))

	docs, err := r.List(ctx, "notes", "alice")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)
	// содержимое в листинг не попадает
	assert.Empty(t, docs[0].Content)

	all, err := r.List(ctx, "notes", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDocumentRepository_UpdateAndRepoint(t *testing.T) {
	db := newTestDB(t)
	r := NewDocumentRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newTestDocument("a", "alice", "notes", "A", "2024-01-01 00:00:00.000000")))
	require.NoError(t, r.Create(ctx, newTestDocument("b", "alice", "chats", "B", "2024-01-01 00:00:00.000000")))

	require.NoError(t, r.Update(ctx, "a", map[string]any{"name": "Renamed"}))
	assert.ErrorIs(t, r.Update(ctx, "missing", map[string]any{"name": "x"}), gorm.ErrRecordNotFound)

	require.NoError(t, r.RepointOwner(ctx, "alice", "alicia"))
	ids, err := r.ListIDsByUser(ctx, "alicia")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	n, err := r.DeleteByUser(ctx, "alicia")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ids, err = r.ListIDsByUser(ctx, "alicia")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
