package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"Sidekick/internal/cli/repo"
)

const cookieName = "auth_token"

// Client — HTTP-клиент по умолчанию для CLI.
var Client = &http.Client{Timeout: 30 * time.Second}

// DoJSON отправляет запрос с JSON-телом (payload == nil — без тела).
// Непустой token передаётся как auth cookie. Тело ответа читается целиком.
func DoJSON(ctx context.Context, method, url string, payload any, token string) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	resp, err := Client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, bytes.TrimSpace(data), nil
}

// PostJSON sends a JSON POST request. If token is non-empty, it is passed as auth cookie.
func PostJSON(url string, payload any, token string) (*http.Response, []byte, error) {
	return DoJSON(context.Background(), http.MethodPost, url, payload, token)
}

// Endpoint склеивает базовый URL сервера и путь.
func Endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его в store.
func PersistAuthFromResponse(resp *http.Response, store repo.TokenStore) error {
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return errors.New("no auth cookie in response")
}

// Result — общий ответ операций над пользователями.
type Result struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

// ServerError формирует ошибку по ответу сервера с неожиданным статусом.
func ServerError(resp *http.Response, body []byte) error {
	var r Result
	if json.Unmarshal(body, &r) == nil && r.Message != "" {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, r.Message)
	}
	return fmt.Errorf("server status %d: %s", resp.StatusCode, string(body))
}
