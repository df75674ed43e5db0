package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only flags given on the command
// line are changed.
type EditCmd struct {
	flags       *pflag.FlagSet
	title       string
	description string
	due         string
	clearDue    bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "todoctl edit <id> [--title <text>] [--description <text>] [--due <date> | --clear-due]"
}
func (c *EditCmd) Route() string { return session.DashboardPath }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.flags = fs
	fs.StringVarP(&c.title, "title", "t", "", "new title")
	fs.StringVarP(&c.description, "description", "d", "", "new description")
	fs.StringVar(&c.due, "due", "", "new due date, 2006-01-02 or 2006-01-02T15:04")
	fs.BoolVar(&c.clearDue, "clear-due", false, "remove the due date")
}

func (c *EditCmd) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	id, ok := idArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}
	if c.changed("due") && c.clearDue {
		fmt.Fprintln(errOut, "error: cannot use both --due and --clear-due")
		return exitcode.UserError
	}

	var patch service.Patch
	if c.changed("title") {
		patch.Title = &c.title
	}
	if c.changed("description") {
		patch.Description = &c.description
	}
	if c.changed("due") {
		due, err := parseDue(c.due)
		if err != nil {
			return report(errOut, id, err)
		}
		patch.DueDate = due
	}
	patch.ClearDueDate = c.clearDue
	if patch.IsEmpty() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	task, err := newStore(ctx, svc).Update(ctx, id, patch)
	if err != nil {
		return report(errOut, id, err)
	}

	if !cfg.Quiet {
		output.New(out).Task(task)
	}
	return exitcode.Success
}
