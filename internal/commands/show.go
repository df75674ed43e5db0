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

// DescriptionWidth is the wrap width for rendered descriptions.
const DescriptionWidth = 80

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return []string{"get"} }
func (c *ShowCmd) Synopsis() string  { return "Show one task in detail" }
func (c *ShowCmd) Usage() string     { return "todoctl show <id>" }
func (c *ShowCmd) Route() string     { return session.DashboardPath }

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	id, ok := idArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	task, err := newStore(ctx, svc).Load(ctx, id)
	if err != nil {
		return report(errOut, id, err)
	}
	output.New(out).Detail(task, output.MarkdownRenderer(DescriptionWidth))
	return exitcode.Success
}
