package service

import (
	"Sidekick/internal/model"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_CreateAndGetRoundTrip(t *testing.T) {
	env := newTestEnv(t, emptyFixtures())
	ctx := context.Background()
	env.mustCreateUser(t, "alice")

	created, err := env.docs.Create(ctx, "alice", model.TypeNotes, DocumentInput{
		Name:       "My Note",
		Tags:       []string{"b", "a", "a"},
		Properties: json.RawMessage(`{"pinned": true}`),
		Content:    json.RawMessage(`{"text": "hi"}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Metadata.ID)
	assert.Equal(t, created.Metadata.CreatedDate, created.Metadata.UpdatedDate)
	assert.Equal(t, model.VisibilityPrivate, created.Metadata.Visibility)

	got, err := env.docs.Get(ctx, created.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, "My Note", got.Metadata.Name)
	assert.Equal(t, "alice", got.Metadata.UserID)
	assert.Equal(t, []string{"a", "b"}, got.Metadata.Tags)
	assert.JSONEq(t, `{"pinned":true}`, string(got.Metadata.Properties))
	assert.JSONEq(t, `{"text":"hi"}`, string(got.Content))
}

func TestDocumentService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t, emptyFixtures())
	ctx := context.Background()
	env.mustCreateUser(t, "alice")

	cases := map[string]string{
		model.TypeNotes: "New Note",
		model.TypeChats: "New Chat",
		"feedback":      "New Document",
	}
	for docType, want := range cases {
		doc, err := env.docs.Create(ctx, "alice", docType, DocumentInput{})
		require.NoError(t, err)
		assert.Equal(t, want, doc.Metadata.Name)
		assert.Equal(t, []string{}, doc.Metadata.Tags)
		assert.JSONEq(t, `{}`, string(doc.Content))
	}
}

func TestDocumentService_CreateValidation(t *testing.T) {
	env := newTestEnv(t, emptyFixtures())
	ctx := context.Background()
	env.mustCreateUser(t, "alice")

	_, err := env.docs.Create(ctx, "nobody", model.TypeNotes, DocumentInput{Name: "x"})
	assert.ErrorIs(t, err, ErrUnknownUser)

	_, err = env.docs.Create(ctx, "alice", model.TypeNotes, DocumentInput{Properties: json.RawMessage(`[1,2]`)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.docs.Create(ctx, "alice", model.TypeNotes, DocumentInput{Content: json.RawMessage(`{broken`)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.docs.Create(ctx, "alice", "", DocumentInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// ни одной частичной записи
	list, err := env.docs.List(ctx, model.TypeNotes, "")
	require.NoError(t, err)
	assert.Zero(t, list.FileCount)
}

func TestDocumentService_UpdateScenario(t *testing.T) {
	env := newTestEnv(t, emptyFixtures())
	ctx := context.Background()

	_, err := env.users.CreateUser(ctx, CreateUserInput{ID: "alice", Password: "pw1"})
	require.NoError(t, err)
	_, err = env.users.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env.docs.now = func() time.Time { return clock }

	doc, err := env.docs.Create(ctx, "alice", model.TypeNotes, DocumentInput{
		Name: "My Note", Tags: []string{"old"}, Content: json.RawMessage(`{"text":"hi"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "My Note", doc.Metadata.Name)

	clock = clock.Add(time.Second)
	_, err = env.docs.Update(ctx, doc.Metadata.ID, DocumentInput{
		Name: "My Note", Tags: []string{"work"}, Properties: json.RawMessage(`{}`), Content: json.RawMessage(`{"text":"hi there"}`),
	})
	require.NoError(t, err)

	got, err := env.docs.Get(ctx, doc.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, got.Metadata.Tags)
	assert.JSONEq(t, `{"text":"hi there"}`, string(got.Content))
	assert.Greater(t, got.Metadata.UpdatedDate, got.Metadata.CreatedDate)
	assert.Equal(t, "2024-05-01 12:00:00.000000", got.Metadata.CreatedDate)
}

func TestDocumentService_PartialUpdates(t *testing.T) {
	env := newTestEnv(t, emptyFixtures())
	ctx := context.Background()
	env.mustCreateUser(t, "alice")

	doc, err := env.docs.Create(ctx, "alice", model.TypeNotes, DocumentInput{Name: "A", Tags: []string{"t"}})
	require.NoError(t, err)
	id := doc.Metadata.ID

	renamed, err := env.docs.UpdateName(ctx, id, "B")
	require.NoError(t, err)
	assert.Equal(t, "B", renamed.Metadata.Name)
	assert.Equal(t, []string{"t"}, renamed.Metadata.Tags)

	moved, err := env.docs.UpdateType(ctx, id, model.TypeChats)
	require.NoError(t, err)
	assert.Equal(t, model.TypeChats, moved.Metadata.Type)

	shared, err := env.docs.UpdateVisibility(ctx, id, model.VisibilityShared)
	require.NoError(t, err)
	assert.Equal(t, model.VisibilityShared, shared.Metadata.Visibility)

	_, err = env.docs.UpdateVisibility(ctx, id, "public")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.docs.UpdateName(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.docs.Update(ctx, "missing", DocumentInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentService_DeleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t, emptyFixtures())
	ctx := context.Background()
	env.mustCreateUser(t, "alice")

	doc, err := env.docs.Create(ctx, "alice", model.TypeNotes, DocumentInput{Name: "A", Tags: []string{"x"}})
	require.NoError(t, err)

	snapshot, err := env.docs.Delete(ctx, doc.Metadata.ID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, []string{"x"}, snapshot.Metadata.Tags)

	_, err = env.docs.Get(ctx, doc.Metadata.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	again, err := env.docs.Delete(ctx, doc.Metadata.ID)
	assert.NoError(t, err)
	assert.Nil(t, again)
}

func TestDocumentService_ListAndGetByName(t *testing.T) {
	env := newTestEnv(t, emptyFixtures())
	ctx := context.Background()
	env.mustCreateUser(t, "alice")
	env.mustCreateUser(t, "bob")

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env.docs.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	first, err := env.docs.Create(ctx, "alice", model.TypeNotes, DocumentInput{Name: "dup", Content: json.RawMessage(`{"n":1}`)})
	require.NoError(t, err)
	_, err = env.docs.Create(ctx, "alice", model.TypeNotes, DocumentInput{Name: "dup", Content: json.RawMessage(`{"n":2}`)})
	require.NoError(t, err)
	_, err = env.docs.Create(ctx, "bob", model.TypeNotes, DocumentInput{Name: "b"})
	require.NoError(t, err)

	got, err := env.docs.GetByName(ctx, "alice", "dup", model.TypeNotes)
	require.NoError(t, err)
	assert.Equal(t, first.Metadata.ID, got.Metadata.ID)

	_, err = env.docs.GetByName(ctx, "bob", "dup", model.TypeNotes)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := env.docs.List(ctx, model.TypeNotes, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, list.FileCount)
	assert.Equal(t, "OK", list.Status)
	// свежие первыми
	assert.NotEqual(t, first.Metadata.ID, list.Documents[0].ID)

	all, err := env.docs.List(ctx, model.TypeNotes, "")
	require.NoError(t, err)
	assert.Equal(t, 3, all.FileCount)
}
