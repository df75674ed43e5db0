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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "todoctl rm [--yes] <id>" }
func (c *RmCmd) Route() string     { return session.DashboardPath }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.yes, "yes", "y", false, "do not ask for confirmation")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	id, ok := idArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	st := newStore(ctx, svc)
	if !c.yes {
		task, err := st.Load(ctx, id)
		if err != nil {
			return report(errOut, id, err)
		}
		if !newPrompter(in, errOut).confirm(fmt.Sprintf("delete task %d %q?", id, task.Title)) {
			if !cfg.Quiet {
				fmt.Fprintln(out, "cancelled")
			}
			return exitcode.Success
		}
	}

	if err := st.Remove(ctx, id); err != nil {
		return report(errOut, id, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
