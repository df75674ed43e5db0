// Package cli builds the command tree and runs one invocation: config,
// logging, session gate, then the command itself.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/logging"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "list"

// ServiceFactory creates a Service carrying the given session token.
// An empty token yields an anonymous client.
type ServiceFactory func(ctx context.Context, cfg *config.Config, token string) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// globalFlags are accepted by every command.
type globalFlags struct {
	configDir string
	baseURL   string
	quiet     bool
	debug     bool
}

// invocation carries the streams and the exit code of one Run.
type invocation struct {
	in          io.Reader
	out, errOut io.Writer
	flags       globalFlags
	code        int
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	inv := &invocation{in: in, out: out, errOut: errOut}
	root := d.rootCommand(inv)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	return inv.code
}

func (d *Dispatcher) rootCommand(inv *invocation) *cobra.Command {
	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Manage your to-do list from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := d.registry.Find(DefaultCommand)
			if !ok {
				return fmt.Errorf("unknown command: %s", DefaultCommand)
			}
			inv.code = d.execute(cmd.Context(), c, args, inv)
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&inv.flags.configDir, "config", "", "configuration directory")
	pf.StringVar(&inv.flags.baseURL, "base-url", "", "backend root URL")
	pf.BoolVarP(&inv.flags.quiet, "quiet", "q", false, "suppress informational output")
	pf.BoolVar(&inv.flags.debug, "debug", false, "enable debug logging")

	for _, c := range d.registry.All() {
		sub := &cobra.Command{
			Use:     c.Name(),
			Aliases: c.Aliases(),
			Short:   c.Synopsis(),
			Example: "  " + c.Usage(),
			RunE: func(cmd *cobra.Command, args []string) error {
				inv.code = d.execute(cmd.Context(), c, args, inv)
				return nil
			},
		}
		c.RegisterFlags(sub.Flags())
		root.AddCommand(sub)
	}
	return root
}

// execute builds the config, logger and backend for one command, applies
// the session gate to its route and runs it.
func (d *Dispatcher) execute(ctx context.Context, cmd commands.Command, args []string, inv *invocation) int {
	errOut := inv.errOut

	cfg, err := config.Load(inv.flags.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = inv.flags.quiet
	cfg.Debug = inv.flags.debug
	if inv.flags.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(inv.flags.baseURL, "/")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	logger := logging.New(errOut, cfg.LogLevel, cfg.Debug)
	ctx = log.WithContext(ctx, logger)

	tok, err := session.LoadToken(cfg.TokenPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	token := tok.AccessToken

	svc, err := d.factory(ctx, cfg, token)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}

	route := cmd.Route()
	if route == "" {
		return cmd.Run(ctx, cfg, svc, args, inv.in, inv.out, errOut)
	}

	gate := session.NewGate(svc, logger)

	// A stored session that no longer validates must not keep the user
	// away from the login and registration pages.
	if token != "" && session.IsAuthPage(route) {
		if !gate.Decide(ctx, session.DashboardPath, token).Allow {
			logger.Debug("dropping stale session", "path", cfg.TokenPath())
			if err := session.RemoveToken(cfg.TokenPath()); err != nil {
				fmt.Fprintf(errOut, "error: failed to remove token: %s\n", err)
				return exitcode.AuthError
			}
			token = ""
			if svc, err = d.factory(ctx, cfg, ""); err != nil {
				fmt.Fprintf(errOut, "error: backend error: %s\n", err)
				return exitcode.BackendError
			}
			gate = session.NewGate(svc, logger)
		}
	}

	decision := gate.Decide(ctx, route, token)
	if !decision.Allow {
		return redirected(decision.Redirect, token != "", cfg, inv.out, errOut)
	}
	return cmd.Run(ctx, cfg, svc, args, inv.in, inv.out, errOut)
}

// redirected reports a refused route the way a terminal user expects it.
func redirected(target string, hadToken bool, cfg *config.Config, out, errOut io.Writer) int {
	switch target {
	case session.LoginPath:
		if hadToken {
			fmt.Fprintf(errOut, "error: session expired or invalid (run: %s login)\n", config.AppName)
		} else {
			fmt.Fprintf(errOut, "error: not logged in (run: %s login)\n", config.AppName)
		}
		return exitcode.AuthError
	case session.DashboardPath:
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}
	fmt.Fprintf(errOut, "error: redirected to %s\n", target)
	return exitcode.AuthError
}
