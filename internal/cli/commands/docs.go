package commands

import (
	"Sidekick/internal/cli/api"
	"Sidekick/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// docMeta — метаданные документа в ответах сервера.
type docMeta struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Visibility  string          `json:"visibility"`
	CreatedDate string          `json:"created_date"`
	UpdatedDate string          `json:"updated_date"`
	Tags        []string        `json:"tags"`
	Properties  json.RawMessage `json:"properties"`
}

type docView struct {
	Metadata docMeta         `json:"metadata"`
	Content  json.RawMessage `json:"content"`
}

type listResponse struct {
	FileCount int       `json:"file_count"`
	Documents []docMeta `json:"documents"`
}

// authorized выполняет запрос с сохранённым токеном и проверяет статус 200.
func authorized(ctx context.Context, cfg *config.Config, method, url string, payload any) ([]byte, error) {
	token, err := loadToken(newAuthStore(cfg))
	if err != nil {
		return nil, err
	}
	resp, body, err := api.DoJSON(ctx, method, url, payload, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrNotLoggedIn
	}
	if resp.StatusCode != http.StatusOK {
		return nil, api.ServerError(resp, body)
	}
	return body, nil
}

type docsCmd struct{}

func (docsCmd) Name() string        { return "docs" }
func (docsCmd) Description() string { return "List documents of a type" }
func (docsCmd) Usage() string       { return "docs <type>" }

func (docsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	body, err := authorized(ctx, cfg, http.MethodGet, docsURL(cfg, args[0]), nil)
	if err != nil {
		return err
	}
	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if len(lr.Documents) == 0 {
		fmt.Fprintln(Out, "No documents")
		return nil
	}
	for _, d := range lr.Documents {
		tags := ""
		if len(d.Tags) > 0 {
			tags = "  [" + strings.Join(d.Tags, ", ") + "]"
		}
		fmt.Fprintf(Out, "- %s  %s  %s%s\n", d.ID, d.UpdatedDate, d.Name, tags)
	}
	fmt.Fprintf(Out, "Total: %d\n", len(lr.Documents))
	return nil
}

func init() { RegisterCmd(docsCmd{}) }
