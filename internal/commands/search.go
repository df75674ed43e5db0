package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/search"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

func init() {
	Register(&SearchCmd{})
}

// SearchCmd implements the search command.
type SearchCmd struct {
	page int
}

func (c *SearchCmd) Name() string      { return "search" }
func (c *SearchCmd) Aliases() []string { return []string{"find"} }
func (c *SearchCmd) Synopsis() string  { return "Search tasks by title or description" }
func (c *SearchCmd) Usage() string     { return "todoctl search [--page <n>] <query...>" }
func (c *SearchCmd) Route() string     { return session.DashboardPath }

func (c *SearchCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.page, "page", "p", 1, "page number, starting at 1")
}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if c.page < 1 {
		fmt.Fprintf(errOut, "error: page out of range: %d\n", c.page)
		return exitcode.UserError
	}

	st := newStore(ctx, svc)
	ctrl := search.New(ctx, st,
		search.WithPageSize(cfg.PageSize),
		search.WithSort(cfg.SortBy, cfg.SortDir),
		search.WithDebounce(cfg.Debounce),
		search.WithLogger(log.FromContext(ctx)),
	)
	defer ctrl.Close()

	ctrl.SetQuery(strings.Join(args, " "))
	ctrl.Flush()
	if state := ctrl.State(); c.page > 1 && state.Err == nil && !state.Empty() {
		ctrl.SetPage(c.page - 1)
	}

	state := ctrl.State()
	if state.Err != nil {
		return report(errOut, 0, state.Err)
	}

	p := output.New(out)
	p.Tasks(st.Tasks())
	p.PageFooter(service.PagedResponse{
		Page:          state.Page,
		TotalPages:    state.TotalPages,
		TotalElements: state.TotalElements,
	})
	return exitcode.Success
}
