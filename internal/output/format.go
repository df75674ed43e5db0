// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"todoctl/internal/calendar"
	"todoctl/internal/service"
)

// Printer writes formatted output to one writer. Styles come from a
// renderer bound to that writer, so output to a file or pipe is plain text.
type Printer struct {
	w   io.Writer
	now func() time.Time

	done    lipgloss.Style
	overdue lipgloss.Style
	faint   lipgloss.Style
	header  lipgloss.Style
	today   lipgloss.Style
}

// New creates a Printer for w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		now:     time.Now,
		done:    r.NewStyle().Faint(true).Strikethrough(true),
		overdue: r.NewStyle().Foreground(lipgloss.Color("9")),
		faint:   r.NewStyle().Faint(true),
		header:  r.NewStyle().Bold(true),
		today:   r.NewStyle().Reverse(true),
	}
}

// WithClock replaces the clock used for relative dates.
func (p *Printer) WithClock(now func() time.Time) *Printer {
	p.now = now
	return p
}

// Task writes one task line.
// Format: "{ID:>4}  [x] {TITLE}" followed by "  ({DUE})" when a due date is set.
func (p *Printer) Task(t service.Task) {
	now := p.now()
	title := normalizeTitle(t.Title)
	box := "[ ]"
	if t.Completed {
		box = "[x]"
		title = p.done.Render(title)
	}
	line := fmt.Sprintf("%4d  %s %s", t.ID, box, title)
	if t.DueDate != nil && !t.DueDate.IsZero() {
		label := "(" + calendar.FormatDue(t.DueDate.Time, now) + ")"
		if calendar.IsOverdue(t, now) {
			label = p.overdue.Render(label)
		} else {
			label = p.faint.Render(label)
		}
		line += "  " + label
	}
	fmt.Fprintln(p.w, line)
}

// Tasks writes task lines, or a placeholder when there are none.
func (p *Printer) Tasks(tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(p.w, p.faint.Render("no tasks"))
		return
	}
	for _, t := range tasks {
		p.Task(t)
	}
}

// PageFooter writes the 1-based page position and the total count.
func (p *Printer) PageFooter(meta service.PagedResponse) {
	if meta.TotalPages == 0 {
		return
	}
	fmt.Fprintln(p.w, p.faint.Render(fmt.Sprintf("page %d of %d, %s", meta.Page+1, meta.TotalPages, plural(meta.TotalElements, "task"))))
}

// Detail writes every field of a task. desc renders the description.
func (p *Printer) Detail(t service.Task, desc func(string) string) {
	now := p.now()
	fmt.Fprintln(p.w, p.header.Render(fmt.Sprintf("#%d %s", t.ID, normalizeTitle(t.Title))))

	status := "open"
	if t.Completed {
		status = "done"
	} else if calendar.IsOverdue(t, now) {
		status = p.overdue.Render("overdue")
	}
	p.field("status", status)
	if t.DueDate != nil && !t.DueDate.IsZero() {
		p.field("due", fmt.Sprintf("%s (%s)", calendar.FormatFull(t.DueDate.Time), calendar.FormatDue(t.DueDate.Time, now)))
	}
	if t.CreatedAt != nil && !t.CreatedAt.IsZero() {
		p.field("created", calendar.FormatRelative(t.CreatedAt.Time, now))
	}
	if t.UpdatedAt != nil && !t.UpdatedAt.IsZero() {
		p.field("updated", calendar.FormatRelative(t.UpdatedAt.Time, now))
	}

	if d := strings.TrimSpace(t.Description); d != "" {
		if desc != nil {
			d = desc(d)
		}
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, d)
	}
}

func (p *Printer) field(name, value string) {
	fmt.Fprintf(p.w, "%-9s%s\n", name+":", value)
}

// Line writes a plain line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func plural(n int64, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
