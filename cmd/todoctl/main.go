// Package main is the entry point for the todoctl CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"todoctl/internal/backend/remote"
	"todoctl/internal/cli"
	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	factory := func(ctx context.Context, cfg *config.Config, token string) (service.Service, error) {
		return remote.New(cfg.BaseURL,
			remote.WithLogger(log.FromContext(ctx)),
			remote.WithSessionToken(token),
		)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
