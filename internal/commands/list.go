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
	Register(&ListCmd{})
}

// Status filters for the list command.
const (
	StatusAll  = "all"
	StatusOpen = "open"
	StatusDone = "done"
)

// ListCmd implements the list command.
type ListCmd struct {
	page   int
	size   int
	status string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "todoctl list [--page <n>] [--size <n>] [--status all|open|done]"
}
func (c *ListCmd) Route() string { return session.DashboardPath }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.page, "page", "p", 1, "page number, starting at 1")
	fs.IntVarP(&c.size, "size", "n", 0, "tasks per page (default from config)")
	fs.StringVarP(&c.status, "status", "s", StatusAll, "all, open or done")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.page < 1 {
		fmt.Fprintf(errOut, "error: page out of range: %d\n", c.page)
		return exitcode.UserError
	}
	size := c.size
	if size == 0 {
		size = cfg.PageSize
	}
	if size < 1 {
		fmt.Fprintf(errOut, "error: invalid page size: %d\n", size)
		return exitcode.UserError
	}

	st := newStore(ctx, svc)
	p := output.New(out)

	switch c.status {
	case "", StatusAll:
		if _, err := st.FetchPage(ctx, service.PageRequest{
			Page:    c.page - 1,
			Size:    size,
			SortBy:  cfg.SortBy,
			SortDir: cfg.SortDir,
		}); err != nil {
			return report(errOut, 0, err)
		}
		p.Tasks(st.Tasks())
		p.PageFooter(st.Page())
	case StatusOpen, StatusDone:
		if _, err := st.FetchCompleted(ctx, c.status == StatusDone); err != nil {
			return report(errOut, 0, err)
		}
		p.Tasks(st.Tasks())
	default:
		fmt.Fprintf(errOut, "error: invalid status: %s (want all, open or done)\n", c.status)
		return exitcode.UserError
	}
	return exitcode.Success
}
