package service

import (
	"Sidekick/internal/model"
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFS() fstest.MapFS {
	return fstest.MapFS{
		"default_settings/chat_settings.json": {Data: []byte(`{"model":"m"}`)},
		"default_settings/readme.txt":         {Data: []byte(`ignored`)},
		"default_documents/docs.json": {Data: []byte(`{
			"notes": {"Welcome": {"tags": ["w"], "content": {"text": "hi"}}},
			"personas": {"Bot": {"properties": {"p": 1}}}
		}`)},
	}
}

func TestSeeder_Manifest(t *testing.T) {
	s := NewSeeder(seedFS(), nil, nil)
	manifest, err := s.Manifest()
	require.NoError(t, err)
	assert.Equal(t, []SeedEntry{
		{Type: "notes", Name: "Welcome"},
		{Type: "personas", Name: "Bot"},
		{Type: "settings", Name: "chat_settings"},
	}, manifest)
}

func TestSeeder_SeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t, seedFS())
	ctx := context.Background()
	env.mustCreateUser(t, "alice")

	// повторный запуск не создаёт дублей
	require.NoError(t, env.seeder.Seed(ctx, "alice"))

	notes, err := env.docs.List(ctx, model.TypeNotes, "alice")
	require.NoError(t, err)
	require.Len(t, notes.Documents, 1)
	assert.Equal(t, []string{"w"}, notes.Documents[0].Tags)

	persona, err := env.docs.GetByName(ctx, "alice", "Bot", "personas")
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":1}`, string(persona.Metadata.Properties))
	assert.JSONEq(t, `{}`, string(persona.Content))

	settings, err := env.docs.GetByName(ctx, "alice", "chat_settings", model.TypeSettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"m"}`, string(settings.Content))
}

func TestSeeder_ResumesAfterPartialSeed(t *testing.T) {
	env := newTestEnv(t, emptyFixtures())
	ctx := context.Background()
	env.mustCreateUser(t, "alice")

	// часть стартовых документов уже есть
	_, err := env.docs.Create(ctx, "alice", "personas", DocumentInput{Name: "Bot"})
	require.NoError(t, err)

	s := NewSeeder(seedFS(), env.docs, nil)
	require.NoError(t, s.Seed(ctx, "alice"))

	personas, err := env.docs.List(ctx, "personas", "alice")
	require.NoError(t, err)
	assert.Len(t, personas.Documents, 1)
	notes, err := env.docs.List(ctx, model.TypeNotes, "alice")
	require.NoError(t, err)
	assert.Len(t, notes.Documents, 1)
}

func TestSeeder_InvalidFixture(t *testing.T) {
	s := NewSeeder(fstest.MapFS{
		"default_settings/bad.json": {Data: []byte(`{nope`)},
	}, nil, nil)
	_, err := s.Manifest()
	assert.ErrorIs(t, err, ErrInvalidInput)
}
