// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Route returns the page the session gate checks before Run: one of
	// the session paths, or "" for commands that run without a decision.
	Route() string

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, remote settings).
	// svc is the backend; the gate has already allowed Route().
	// args contains positional arguments after flag parsing.
	// in supplies prompt answers.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int
}
