package commands

import (
	"Sidekick/internal/config"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- login tests ---
func TestLogin_Run_SuccessAndErrors(t *testing.T) {
	withTempConfig(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/login") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			// неверный пароль: 200 и success=false
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid login"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "tok-123"})
		_, _ = w.Write([]byte(`{"success":true,"access_token":"tok-123"}`))
	}))
	defer ts.Close()

	cfg := &config.Config{ServerURL: ts.URL}
	cmd := loginCmd{}
	if err := cmd.Run(context.Background(), cfg, []string{"alice", "secret"}); err != nil {
		t.Fatalf("login should succeed: %v", err)
	}
	// токен лежит в %CONFIG%/Sidekick/auth_token
	cfgDir, _ := os.UserConfigDir()
	b, err := os.ReadFile(filepath.Join(cfgDir, "Sidekick", "auth_token"))
	if err != nil || string(b) != "tok-123" {
		t.Fatalf("auth token not saved: %q %v", b, err)
	}
	login, _ := newAuthStore(cfg).LoadLogin()
	if login != "alice" {
		t.Fatalf("login not saved, got %q", login)
	}

	err = cmd.Run(context.Background(), cfg, []string{"alice", "bad"})
	if err == nil || err.Error() != "Invalid login" {
		t.Fatalf("expected Invalid login, got %v", err)
	}

	if err := cmd.Run(context.Background(), cfg, []string{"onlyLogin"}); err != ErrUsage {
		t.Fatalf("expected ErrUsage, got %v", err)
	}

	// server 500 → ошибка
	ts500 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts500.Close()
	if err := cmd.Run(context.Background(), &config.Config{ServerURL: ts500.URL}, []string{"a", "b"}); err == nil {
		t.Fatalf("expected error for 500")
	}
}

func TestLogin_TokenFromBodyWhenNoCookie(t *testing.T) {
	withTempConfig(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"access_token":"body-token"}`))
	}))
	defer ts.Close()

	cfg := &config.Config{ServerURL: ts.URL}
	if err := (loginCmd{}).Run(context.Background(), cfg, []string{"alice", "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	tok, err := newAuthStore(cfg).Load()
	if err != nil || tok != "body-token" {
		t.Fatalf("token from body not saved: %q %v", tok, err)
	}
}

func TestLogout_ClearsToken(t *testing.T) {
	withTempConfig(t)
	cfg := &config.Config{}
	store := newAuthStore(cfg)
	if err := store.Save("tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	out := withStdoutCapture(t, func() {
		if err := (logoutCmd{}).Run(context.Background(), cfg, nil); err != nil {
			t.Fatalf("logout: %v", err)
		}
	})
	if !strings.Contains(out, "Logged out") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := store.Load(); err == nil {
		t.Fatalf("token must be removed")
	}
}

// --- register tests ---
func TestRegister_Run_SuccessAndErrors(t *testing.T) {
	withTempConfig(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/create_account") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.UserID == "taken" {
			_, _ = w.Write([]byte(`{"success":false,"message":"A user with that ID already exists."}`))
			return
		}
		if req.Name != "Bob" {
			t.Fatalf("name not sent: %+v", req)
		}
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "tok-xyz"})
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer ts.Close()

	cfg := &config.Config{ServerURL: ts.URL}
	cmd := registerCmd{}
	if err := cmd.Run(context.Background(), cfg, []string{"bob", "pwd", "Bob"}); err != nil {
		t.Fatalf("register should succeed: %v", err)
	}
	cfgDir, _ := os.UserConfigDir()
	if _, err := os.Stat(filepath.Join(cfgDir, "Sidekick", "last_login")); err != nil {
		t.Fatalf("last_login not saved: %v", err)
	}

	err := cmd.Run(context.Background(), cfg, []string{"taken", "pwd", "Bob"})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	if err := cmd.Run(context.Background(), cfg, []string{"onlyLogin"}); err != ErrUsage {
		t.Fatalf("expected ErrUsage, got %v", err)
	}

	ts500 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts500.Close()
	if err := cmd.Run(context.Background(), &config.Config{ServerURL: ts500.URL}, []string{"bob", "pwd"}); err == nil {
		t.Fatalf("expected server error")
	}
}
