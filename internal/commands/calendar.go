package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"todoctl/internal/calendar"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

// MonthLayout is the --month flag format.
const MonthLayout = "2006-01"

func init() {
	Register(&CalendarCmd{})
}

// CalendarCmd implements the calendar command.
type CalendarCmd struct {
	month string
	day   int

	// Now is the clock, for tests.
	Now func() time.Time
}

func (c *CalendarCmd) Name() string      { return "calendar" }
func (c *CalendarCmd) Aliases() []string { return []string{"cal"} }
func (c *CalendarCmd) Synopsis() string  { return "Show tasks on a month calendar" }
func (c *CalendarCmd) Usage() string     { return "todoctl calendar [--month YYYY-MM] [--day <d>]" }
func (c *CalendarCmd) Route() string     { return session.CalendarPath }

func (c *CalendarCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.month, "month", "m", "", "month to show (default current)")
	fs.IntVarP(&c.day, "day", "d", 0, "open one day of the month")
}

func (c *CalendarCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := now().Location()

	year, month := now().Year(), now().Month()
	if c.month != "" {
		t, err := time.ParseInLocation(MonthLayout, c.month, loc)
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid month: %s (want YYYY-MM)\n", c.month)
			return exitcode.UserError
		}
		year, month = t.Year(), t.Month()
	}
	if c.day != 0 && (c.day < 1 || c.day > calendar.DaysIn(year, month)) {
		fmt.Fprintf(errOut, "error: day out of range: %d\n", c.day)
		return exitcode.UserError
	}

	tasks, err := newStore(ctx, svc).FetchAll(ctx, service.PageRequest{SortBy: cfg.SortBy, SortDir: cfg.SortDir})
	if err != nil {
		return report(errOut, 0, err)
	}

	p := output.New(out).WithClock(now)
	grid := calendar.Month(year, month, tasks, now(), loc)
	if c.day == 0 {
		p.Calendar(grid)
		return exitcode.Success
	}

	click := calendar.Resolve(year, month, c.day, calendar.Bucket(tasks, year, month, loc), loc)
	switch click.Kind {
	case calendar.ClickCreate:
		due := click.Draft.DueDate.Format("2006-01-02T15:04")
		p.Day(grid, c.day)
		p.Line("add one with: %s add --due %s <title>", config.AppName, due)
	case calendar.ClickEdit:
		p.Detail(click.Task, output.MarkdownRenderer(DescriptionWidth))
	case calendar.ClickChoose:
		p.Day(grid, c.day)
	}
	return exitcode.Success
}
