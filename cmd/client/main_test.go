package main

import (
	"Sidekick/internal/cli/commands"
	"Sidekick/internal/config"
	"bytes"
	"strings"
	"testing"
)

func TestRun_Version(t *testing.T) {
	var buf bytes.Buffer
	code := run(&config.Config{Version: true, BaseURL: "localhost:8080", EnableHTTPS: true}, nil, &buf)
	if code != 0 {
		t.Fatalf("exit code want 0, got %d", code)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "sidekick-cli dev") {
		t.Fatalf("unexpected version line: %q", out)
	}
	if !strings.Contains(out, "server: https://localhost:8080") {
		t.Fatalf("server address missing: %q", out)
	}
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var buf bytes.Buffer
	prev := commands.Out
	commands.Out = &buf
	t.Cleanup(func() { commands.Out = prev })

	code := run(&config.Config{BaseURL: "localhost:8080"}, nil, &buf)
	if code != 2 {
		t.Fatalf("exit code want 2, got %d", code)
	}
	if !strings.Contains(buf.String(), "Sidekick CLI") {
		t.Fatalf("usage missing: %q", buf.String())
	}
}
