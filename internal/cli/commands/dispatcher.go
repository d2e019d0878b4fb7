package commands

import (
	"Sidekick/internal/config"
	"context"
	"errors"
	"fmt"
	"strings"
)

// Коды завершения CLI.
const (
	exitOK       = 0
	exitError    = 1
	exitUsage    = 2
	exitNoLogin  = 3
	exitCanceled = 130
)

// Dispatch выполняет команду args[0] и возвращает код завершения процесса.
// Справка печатается для "help", пустого списка аргументов и ErrUsage.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}

	name := strings.ToLower(args[0])
	if name == "help" || name == "-h" || name == "--help" {
		return help(args[1:])
	}

	c, ok := Get(name)
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return exitUsage
	case errors.Is(err, ErrNotLoggedIn):
		fmt.Fprintln(Out, err)
		return exitNoLogin
	case errors.Is(err, context.Canceled):
		return exitCanceled
	default:
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		return exitError
	}
}

// help печатает общую справку или usage одной команды.
func help(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitOK
	}
	if c, ok := Get(args[0]); ok {
		fmt.Fprintf(Out, "Usage: %s\n  %s\n", c.Usage(), c.Description())
		return exitOK
	}
	fmt.Fprintf(Out, "Unknown command: %s\n\n", args[0])
	fmt.Fprint(Out, FormatGlobalUsage())
	return exitUsage
}
