package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	due         string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todoctl add [--description <text>] [--due <date>] <title...>"
}
func (c *AddCmd) Route() string { return session.DashboardPath }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.description, "description", "d", "", "longer notes, markdown allowed")
	fs.StringVar(&c.due, "due", "", "due date, 2006-01-02 or 2006-01-02T15:04")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	draft := service.Draft{Title: title, Description: c.description}
	if c.due != "" {
		due, err := parseDue(c.due)
		if err != nil {
			return report(errOut, 0, err)
		}
		draft.DueDate = due
	}

	task, err := newStore(ctx, svc).Create(ctx, draft)
	if err != nil {
		return report(errOut, 0, err)
	}

	if !cfg.Quiet {
		output.New(out).Task(task)
	}
	return exitcode.Success
}
