package commands

import (
	"Sidekick/internal/config"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

func printDoc(d docView) {
	fmt.Fprintf(Out, "id:          %s\n", d.Metadata.ID)
	fmt.Fprintf(Out, "type:        %s\n", d.Metadata.Type)
	fmt.Fprintf(Out, "name:        %s\n", d.Metadata.Name)
	fmt.Fprintf(Out, "owner:       %s\n", d.Metadata.UserID)
	fmt.Fprintf(Out, "visibility:  %s\n", d.Metadata.Visibility)
	fmt.Fprintf(Out, "created:     %s\n", d.Metadata.CreatedDate)
	fmt.Fprintf(Out, "updated:     %s\n", d.Metadata.UpdatedDate)
	fmt.Fprintf(Out, "tags:        %s\n", strings.Join(d.Metadata.Tags, ", "))
	fmt.Fprintf(Out, "properties:  %s\n", d.Metadata.Properties)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, d.Content, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(d.Content)
	}
	fmt.Fprintf(Out, "content:\n%s\n", pretty.String())
}

func decodeDoc(body []byte) (docView, error) {
	var d docView
	if err := json.Unmarshal(body, &d); err != nil {
		return d, fmt.Errorf("decode: %w", err)
	}
	return d, nil
}

type docGetCmd struct{}

func (docGetCmd) Name() string        { return "doc-get" }
func (docGetCmd) Description() string { return "Show a document with its content" }
func (docGetCmd) Usage() string       { return "doc-get <type> <id>" }

func (docGetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	body, err := authorized(ctx, cfg, http.MethodGet, docsURL(cfg, args[0], args[1]), nil)
	if err != nil {
		return err
	}
	d, err := decodeDoc(body)
	if err != nil {
		return err
	}
	printDoc(d)
	return nil
}

type docAddRequest struct {
	Name    string          `json:"name"`
	Content json.RawMessage `json:"content,omitempty"`
}

type docAddCmd struct{}

func (docAddCmd) Name() string        { return "doc-add" }
func (docAddCmd) Description() string { return "Create a document (content is a JSON value)" }
func (docAddCmd) Usage() string       { return "doc-add <type> <name> [json-content]" }

func (docAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	req := docAddRequest{Name: args[1]}
	if len(args) == 3 {
		if !json.Valid([]byte(args[2])) {
			return errors.New("content must be valid JSON")
		}
		req.Content = json.RawMessage(args[2])
	}
	body, err := authorized(ctx, cfg, http.MethodPost, docsURL(cfg, args[0]), req)
	if err != nil {
		return err
	}
	d, err := decodeDoc(body)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Created:")
	fmt.Fprintf(Out, "  id:   %s\n", d.Metadata.ID)
	fmt.Fprintf(Out, "  name: %s\n", d.Metadata.Name)
	return nil
}

type docRenameCmd struct{}

func (docRenameCmd) Name() string        { return "doc-rename" }
func (docRenameCmd) Description() string { return "Rename a document" }
func (docRenameCmd) Usage() string       { return "doc-rename <type> <id> <name>" }

func (docRenameCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	payload := map[string]string{"name": args[2]}
	body, err := authorized(ctx, cfg, http.MethodPut, docsURL(cfg, args[0], args[1], "rename"), payload)
	if err != nil {
		return err
	}
	d, err := decodeDoc(body)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Renamed %s to %q\n", d.Metadata.ID, d.Metadata.Name)
	return nil
}

type docDeleteCmd struct{}

func (docDeleteCmd) Name() string        { return "doc-delete" }
func (docDeleteCmd) Description() string { return "Delete a document" }
func (docDeleteCmd) Usage() string       { return "doc-delete <type> <id>" }

func (docDeleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	if _, err := authorized(ctx, cfg, http.MethodDelete, docsURL(cfg, args[0], args[1]), nil); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted %s\n", args[1])
	return nil
}

func init() {
	RegisterCmd(docGetCmd{})
	RegisterCmd(docAddCmd{})
	RegisterCmd(docRenameCmd{})
	RegisterCmd(docDeleteCmd{})
}
