package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Print the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "todoctl whoami" }
func (c *WhoamiCmd) Route() string     { return session.DashboardPath }

func (c *WhoamiCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	name, err := svc.Me(ctx)
	if err != nil {
		return report(errOut, 0, err)
	}
	fmt.Fprintln(out, name)
	return exitcode.Success
}
