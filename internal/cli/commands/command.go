package commands

import (
	"Sidekick/internal/cli/api"
	"Sidekick/internal/cli/repo"
	fsrepo "Sidekick/internal/cli/repo/fs"
	"Sidekick/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "login".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "login <user_id> <password>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage builds a help text for all commands.
func FormatGlobalUsage() string {
	lines := []string{
		"Sidekick CLI",
		"",
		"Usage:",
		"  sidekick-cli [--base-url <host:port>] [--https] <command> [args]",
		"",
		"Commands:",
	}
	for _, c := range List() {
		lines = append(lines, fmt.Sprintf("  %-28s %s", c.Usage(), c.Description()))
	}
	return strings.Join(lines, "\n") + "\n"
}

// newAuthStore открывает хранилище токена и id пользователя. В тестах может переназначаться.
var newAuthStore = func(cfg *config.Config) repo.AuthStore {
	return fsrepo.AuthFSStore{TokenFile: cfg.TokenFile}
}

// ErrNotLoggedIn — локально нет сохранённого токена.
var ErrNotLoggedIn = errors.New("not logged in, run: sidekick-cli login <user_id> <password>")

// loadToken читает сохранённый токен.
func loadToken(store repo.TokenStore) (string, error) {
	tok, err := store.Load()
	if err != nil || tok == "" {
		return "", ErrNotLoggedIn
	}
	return tok, nil
}

// docsURL — адрес коллекции документов типа docType (и документа id, если задан).
func docsURL(cfg *config.Config, docType string, id ...string) string {
	p := "/docdb/" + url.PathEscape(docType) + "/documents"
	for _, part := range id {
		p += "/" + url.PathEscape(part)
	}
	return api.Endpoint(cfg.ServerURL, p)
}
