package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles, so running it on a
// completed task reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task's completed flag" }
func (c *DoneCmd) Usage() string     { return "todoctl done <id>" }
func (c *DoneCmd) Route() string     { return session.DashboardPath }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	id, ok := idArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	st := newStore(ctx, svc)
	if _, err := st.Load(ctx, id); err != nil {
		return report(errOut, id, err)
	}
	task, err := st.ToggleCompleted(ctx, id)
	if err != nil {
		return report(errOut, id, err)
	}

	if !cfg.Quiet {
		output.New(out).Task(task)
	}
	return exitcode.Success
}
