package handlers_test

import (
	"Sidekick/internal/config"
	"Sidekick/internal/fixtures"
	"Sidekick/internal/handlers"
	"Sidekick/internal/middleware"
	"Sidekick/internal/repo"
	"Sidekick/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type testServer struct {
	router http.Handler
	users  *service.UserService
	docs   *service.DocumentService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{AuthSecret: testSecret}
	logger := zap.NewNop().Sugar()

	db, err := repo.InitDB(repo.DBTypeSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(db) })

	userRepo := repo.NewUserRepository(db)
	tagRepo := repo.NewTagRepository(db)
	tx := repo.NewTransactor(db)
	docs := service.NewDocumentService(userRepo, repo.NewDocumentRepository(db), tagRepo, tx, logger, nil)
	seeder := service.NewSeeder(fixtures.FS(), docs, logger)
	users := service.NewUserService(userRepo, docs, tagRepo, tx, seeder, logger, service.WithBcryptCost(bcrypt.MinCost))
	settings := service.NewSettingsService(fixtures.FS(), docs, logger)

	require.NoError(t, service.Bootstrap(context.Background(), users, settings, "adminpw", logger))

	h := handlers.NewHandler(handlers.Services{
		Users:     users,
		Documents: docs,
		Settings:  settings,
		PingDB:    func() error { return repo.Ping(db) },
		Version:   "test",
	}, logger, cfg)
	return &testServer{router: h.Router, users: users, docs: docs}
}

// do выполняет запрос; userID != "" — с cookie аутентификации.
func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		addAuthCookie(t, req, userID, testSecret)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func addAuthCookie(t *testing.T, req *http.Request, userID, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_, err := middleware.SetLoginCookie(rr, userID, secret)
	require.NoError(t, err)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func hasAuthCookie(rr *httptest.ResponseRecorder) bool {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.CookieName && c.Value != "" {
			return true
		}
	}
	return false
}
