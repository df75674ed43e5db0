package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"todoctl/internal/service"
	"todoctl/internal/store"
)

// prompter reads answers line by line from one reader.
type prompter struct {
	r   *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	if in == nil {
		in = strings.NewReader("")
	}
	return &prompter{r: bufio.NewReader(in), out: out}
}

// ask writes label and returns the trimmed answer. io.EOF is returned only
// when nothing was read.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; anything but y or yes declines.
func (p *prompter) confirm(question string) bool {
	answer, err := p.ask(question + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// newStore builds a task store for one invocation, logging through the
// logger carried by ctx.
func newStore(ctx context.Context, svc service.TodoService) *store.Store {
	return store.New(svc, store.WithLogger(log.FromContext(ctx)))
}

// parseDue parses a --due value in local time.
func parseDue(s string) (*service.Timestamp, error) {
	ts, err := service.ParseTimestamp(strings.TrimSpace(s))
	if err != nil {
		return nil, &service.ValidationError{Field: "due", Reason: fmt.Sprintf("%q is not a date (use 2006-01-02 or 2006-01-02T15:04)", s)}
	}
	return &ts, nil
}
