package commands

import (
	"Sidekick/internal/config"
	"context"
	"fmt"
)

type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <user_id> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return authenticate(ctx, cfg, "/login", args[0], LoginRequest{UserID: args[0], Password: args[1]})
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored auth token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := newAuthStore(cfg).Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
}
