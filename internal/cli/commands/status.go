package commands

import (
	"Sidekick/internal/cli/api"
	"Sidekick/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type pingResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show server status and current user" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	resp, body, err := api.DoJSON(ctx, http.MethodGet, api.Endpoint(cfg.ServerURL, "/ping"), nil, "")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return api.ServerError(resp, body)
	}
	var pr pingResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintf(Out, "Server:  %s (%s) %s\n", cfg.ServerURL, pr.Status, pr.Version)

	store := newAuthStore(cfg)
	user, err := store.LoadLogin()
	if err != nil {
		user = "-"
	}
	if _, err := loadToken(store); err != nil {
		fmt.Fprintf(Out, "User:    %s (not logged in)\n", user)
		return nil
	}
	fmt.Fprintf(Out, "User:    %s\n", user)
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
