// Package session gates protected routes on a valid session and persists the
// session token between invocations.
package session

import (
	"context"
	"path"
	"strings"

	"github.com/charmbracelet/log"

	"todoctl/internal/logging"
	"todoctl/internal/service"
)

// Routes known to the gate.
const (
	LoginPath     = "/login"
	RegisterPath  = "/register"
	DashboardPath = "/dashboard"
	CalendarPath  = "/calendar"
)

// Decision is the outcome of a gate check.
type Decision struct {
	Allow    bool
	Redirect string
}

var allow = Decision{Allow: true}

func redirect(target string) Decision {
	return Decision{Redirect: target}
}

// Gate decides, per navigation, whether the path may be served.
type Gate struct {
	validator service.Validator
	logger    *log.Logger
}

// NewGate creates a gate that validates sessions with v.
func NewGate(v service.Validator, logger *log.Logger) *Gate {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gate{validator: v, logger: logger}
}

// Decide applies the rules in order:
//  1. session present on an auth page: redirect to the dashboard
//  2. no session on a protected page: redirect to login
//  3. session present on a protected page: validate remotely, redirect to
//     login if invalid or if validation could not complete
//  4. otherwise allow
//
// Decide blocks until validation resolves.
func (g *Gate) Decide(ctx context.Context, p, token string) Decision {
	p = cleanPath(p)
	present := token != ""

	switch {
	case present && IsAuthPage(p):
		return redirect(DashboardPath)
	case !present && IsProtected(p):
		return redirect(LoginPath)
	case present && IsProtected(p):
		if g.validator == nil {
			return redirect(LoginPath)
		}
		ok, err := g.validator.Validate(ctx, token)
		if err != nil {
			g.logger.Debug("session validation failed", "path", p, "err", err)
			return redirect(LoginPath)
		}
		if !ok {
			g.logger.Debug("session rejected", "path", p)
			return redirect(LoginPath)
		}
	}
	return allow
}

// IsAuthPage reports whether p is the login or registration page.
func IsAuthPage(p string) bool {
	p = cleanPath(p)
	return p == LoginPath || p == RegisterPath
}

// IsProtected reports whether p belongs to the dashboard or calendar family.
func IsProtected(p string) bool {
	p = cleanPath(p)
	return underRoot(p, DashboardPath) || underRoot(p, CalendarPath)
}

func underRoot(p, root string) bool {
	return p == root || strings.HasPrefix(p, root+"/")
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
