package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and store the session" }
func (c *LoginCmd) Usage() string     { return "todoctl login [--username <name>]" }
func (c *LoginCmd) Route() string     { return session.LoginPath }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "account name")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	return authenticate(ctx, cfg, svc.Login, c.username, in, out, errOut)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and store the session" }
func (c *RegisterCmd) Usage() string     { return "todoctl register [--username <name>]" }
func (c *RegisterCmd) Route() string     { return session.RegisterPath }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "account name")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	return authenticate(ctx, cfg, svc.Register, c.username, in, out, errOut)
}

type authFunc func(ctx context.Context, username, password string) (service.Session, error)

// authenticate is the shared implementation for login and register.
func authenticate(ctx context.Context, cfg *config.Config, auth authFunc, username string, in io.Reader, out, errOut io.Writer) int {
	p := newPrompter(in, errOut)

	var err error
	if strings.TrimSpace(username) == "" {
		username, err = p.ask("username: ")
		if err != nil || username == "" {
			fmt.Fprintln(errOut, "error: username required")
			return exitcode.UserError
		}
	}
	password, err := p.ask("password: ")
	if err != nil || password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}

	sess, err := auth(ctx, strings.TrimSpace(username), password)
	if err != nil {
		if service.IsUnauthorized(err) {
			fmt.Fprintln(errOut, "error: invalid username or password")
			return exitcode.AuthError
		}
		var httpErr *service.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusConflict {
			fmt.Fprintf(errOut, "error: username already taken: %s\n", username)
			return exitcode.UserError
		}
		return report(errOut, 0, err)
	}
	if sess.Token == "" {
		fmt.Fprintln(errOut, "error: backend did not issue a session")
		return exitcode.BackendError
	}

	if err := session.SaveToken(cfg.TokenPath(), sess.Token, sess.Expiry.Time); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}
	log.FromContext(ctx).Debug("session stored", "path", cfg.TokenPath())

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
