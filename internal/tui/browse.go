// Package tui provides the interactive task browser.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todoctl/internal/calendar"
	"todoctl/internal/search"
	"todoctl/internal/service"
	"todoctl/internal/store"
)

type resultsMsg struct {
	state search.State
}

type toggledMsg struct {
	task service.Task
	err  error
}

// Model is the bubbletea model for browse. Query edits go through the
// search controller; results arrive on a channel fed by its OnChange hook.
type Model struct {
	ctx     context.Context
	store   *store.Store
	ctrl    *search.Controller
	results chan search.State

	input  textinput.Model
	state  search.State
	tasks  []service.Task
	cursor int
	notice string
	now    func() time.Time

	selected lipgloss.Style
	faint    lipgloss.Style
	alert    lipgloss.Style
}

// New creates the model and subscribes it to ctrl.
func New(ctx context.Context, st *store.Store, ctrl *search.Controller) *Model {
	in := textinput.New()
	in.Placeholder = "search tasks"
	in.Prompt = "/ "
	in.Focus()

	m := &Model{
		ctx:      ctx,
		store:    st,
		ctrl:     ctrl,
		results:  make(chan search.State, 1),
		input:    in,
		now:      time.Now,
		selected: lipgloss.NewStyle().Reverse(true),
		faint:    lipgloss.NewStyle().Faint(true),
		alert:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
	ctrl.OnChange(m.publish)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen waits for the next settled search.
// publish hands s to the event loop without blocking. The slot holds only
// the latest state; an unread older one is replaced.
func (m *Model) publish(s search.State) {
	for {
		select {
		case m.results <- s:
			return
		default:
		}
		select {
		case <-m.results:
		default:
		}
	}
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.results:
			return resultsMsg{state: s}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.ctrl.Close()
			return m, tea.Quit
		case "left":
			return m, m.page(m.ctrl.PrevPage)
		case "right":
			return m, m.page(m.ctrl.NextPage)
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			return m, m.toggle()
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != before {
			m.ctrl.SetQuery(v)
		}
		return m, cmd

	case resultsMsg:
		m.state = msg.state
		m.tasks = m.store.Tasks()
		if m.cursor >= len(m.tasks) {
			m.cursor = max(len(m.tasks)-1, 0)
		}
		m.notice = ""
		if msg.state.Err != nil {
			m.notice = "error: " + msg.state.Err.Error()
		}
		return m, m.listen()

	case toggledMsg:
		if msg.err != nil {
			m.notice = "error: " + msg.err.Error()
			return m, nil
		}
		m.tasks = m.store.Tasks()
		m.notice = fmt.Sprintf("task %d updated", msg.task.ID)
		return m, nil
	}
	return m, nil
}

// page runs a page change off the event loop; the result arrives as a
// resultsMsg.
func (m *Model) page(move func()) tea.Cmd {
	if m.state.Empty() {
		return nil
	}
	return func() tea.Msg {
		move()
		return nil
	}
}

func (m *Model) toggle() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return nil
	}
	id := m.tasks[m.cursor].ID
	return func() tea.Msg {
		task, err := m.store.ToggleCompleted(m.ctx, id)
		return toggledMsg{task: task, err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.state.Empty():
		b.WriteString(m.faint.Render("type to search"))
		b.WriteString("\n")
	case len(m.tasks) == 0:
		b.WriteString(m.faint.Render("no matches"))
		b.WriteString("\n")
	}

	now := m.now()
	for i, t := range m.tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("%4d  %s %s", t.ID, box, t.Title)
		if t.DueDate != nil && !t.DueDate.IsZero() {
			line += "  (" + calendar.FormatDue(t.DueDate.Time, now) + ")"
		}
		if i == m.cursor {
			line = m.selected.Render(line)
		} else if calendar.IsOverdue(t, now) {
			line = m.alert.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state.TotalPages > 0 {
		b.WriteString(m.faint.Render(fmt.Sprintf("page %d of %d, %d matches", m.state.Page+1, m.state.TotalPages, m.state.TotalElements)))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.alert.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.faint.Render("←/→ page  ↑/↓ select  enter toggle  esc quit"))
	return b.String()
}

// Run starts the browser on in/out until the user quits or ctx ends.
func Run(ctx context.Context, st *store.Store, ctrl *search.Controller, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(ctx, st, ctrl),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
