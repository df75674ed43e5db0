package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/search"
	"todoctl/internal/service"
	"todoctl/internal/session"
	"todoctl/internal/tui"
)

func init() {
	Register(&BrowseCmd{})
}

// BrowseCmd implements the browse command.
type BrowseCmd struct{}

func (c *BrowseCmd) Name() string      { return "browse" }
func (c *BrowseCmd) Aliases() []string { return []string{"ui"} }
func (c *BrowseCmd) Synopsis() string  { return "Search and toggle tasks interactively" }
func (c *BrowseCmd) Usage() string     { return "todoctl browse" }
func (c *BrowseCmd) Route() string     { return session.DashboardPath }

func (c *BrowseCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *BrowseCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	st := newStore(ctx, svc)
	ctrl := search.New(ctx, st,
		search.WithPageSize(cfg.PageSize),
		search.WithSort(cfg.SortBy, cfg.SortDir),
		search.WithDebounce(cfg.Debounce),
		search.WithLogger(log.FromContext(ctx)),
	)
	defer ctrl.Close()

	if err := tui.Run(ctx, st, ctrl, in, out); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
