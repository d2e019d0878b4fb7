package main

import (
	"Sidekick/internal/cli/commands"
	"Sidekick/internal/config"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var (
	buildVersion = "dev"
	buildDate    = "unknown"
)

func main() {
	cfg := config.NewConfig()
	os.Exit(run(cfg, flag.Args(), os.Stdout))
}

// run выполняет команду CLI и возвращает код выхода.
// Ctrl+C отменяет контекст текущего запроса к серверу.
func run(cfg *config.Config, args []string, out io.Writer) int {
	if cfg.Version {
		printVersion(out, cfg)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Dispatch(ctx, cfg, args)
}

func printVersion(out io.Writer, cfg *config.Config) {
	scheme := "http"
	if cfg.EnableHTTPS {
		scheme = "https"
	}
	fmt.Fprintf(out, "sidekick-cli %s (built %s)\n", buildVersion, buildDate)
	fmt.Fprintf(out, "server: %s://%s\n", scheme, cfg.BaseURL)
}
