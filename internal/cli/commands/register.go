package commands

import (
	"Sidekick/internal/cli/api"
	"Sidekick/internal/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type RegisterRequest struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and store auth cookie" }
func (registerCmd) Usage() string       { return "register <user_id> <password> [name]" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	req := RegisterRequest{UserID: args[0], Password: args[1]}
	if len(args) == 3 {
		req.Name = args[2]
	}
	return authenticate(ctx, cfg, "/create_account", req.UserID, req)
}

// authenticate выполняет вход или регистрацию и сохраняет токен и id пользователя.
func authenticate(ctx context.Context, cfg *config.Config, path, userID string, payload any) error {
	resp, body, err := api.DoJSON(ctx, http.MethodPost, api.Endpoint(cfg.ServerURL, path), payload, "")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return errors.New("invalid login or password")
		}
		return api.ServerError(resp, body)
	}
	var res api.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if !res.Success {
		return errors.New(res.Message)
	}

	store := newAuthStore(cfg)
	if err := api.PersistAuthFromResponse(resp, store); err != nil {
		if res.AccessToken == "" {
			return fmt.Errorf("saving auth: %w", err)
		}
		if err := store.Save(res.AccessToken); err != nil {
			return fmt.Errorf("saving auth: %w", err)
		}
	}
	if err := store.SaveLogin(userID); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	fmt.Fprintf(Out, "Logged in as %s\n", userID)
	return nil
}

func init() { RegisterCmd(registerCmd{}) }
