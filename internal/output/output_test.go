package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"todoctl/internal/calendar"
	"todoctl/internal/service"
	"todoctl/internal/testutil"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf).WithClock(func() time.Time { return fixedNow }), &buf
}

func due(t time.Time) *service.Timestamp {
	return service.NewTimestamp(t)
}

func TestTask_Lines(t *testing.T) {
	tests := []struct {
		name string
		task service.Task
		want string
	}{
		{"open", service.Task{ID: 3, Title: "Buy milk"}, "   3  [ ] Buy milk\n"},
		{"done", service.Task{ID: 12, Title: "Report", Completed: true}, "  12  [x] Report\n"},
		{"untitled", service.Task{ID: 1, Title: "  "}, "   1  [ ] (untitled)\n"},
		{"newline", service.Task{ID: 1, Title: "a\nb"}, "   1  [ ] a b\n"},
		{"due soon", service.Task{ID: 4, Title: "Call", DueDate: due(fixedNow.Add(3 * time.Hour))}, "   4  [ ] Call  (in 3h)\n"},
		{"overdue", service.Task{ID: 5, Title: "Pay", DueDate: due(fixedNow.Add(-50 * time.Hour))}, "   5  [ ] Pay  (Overdue by 2 days)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := newTestPrinter()
			p.Task(tt.task)
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestTasks_Empty(t *testing.T) {
	p, buf := newTestPrinter()
	p.Tasks(nil)
	if buf.String() != "no tasks\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestPageFooter(t *testing.T) {
	p, buf := newTestPrinter()
	p.PageFooter(service.PagedResponse{Page: 1, TotalPages: 3, TotalElements: 25})
	p.PageFooter(service.PagedResponse{Page: 0, TotalPages: 1, TotalElements: 1})
	p.PageFooter(service.PagedResponse{})
	want := "page 2 of 3, 25 tasks\npage 1 of 1, 1 task\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestDetail(t *testing.T) {
	p, buf := newTestPrinter()
	task := service.Task{
		ID:          7,
		Title:       "Write report",
		Description: "Quarterly numbers",
		DueDate:     due(time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)),
		CreatedAt:   due(fixedNow.Add(-2 * time.Hour)),
	}
	p.Detail(task, strings.ToUpper)

	want := "#7 Write report\n" +
		"status:  overdue\n" +
		"due:     March 14, 2024 10:00:00 (Overdue by 1 day)\n" +
		"created: 2h ago\n" +
		"\n" +
		"QUARTERLY NUMBERS\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestCalendar_Golden(t *testing.T) {
	p, buf := newTestPrinter()
	tasks := []service.Task{
		{ID: 1, Title: "late", DueDate: due(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))},
		{ID: 2, Title: "done", Completed: true, DueDate: due(time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC))},
		{ID: 3, Title: "soon", DueDate: due(time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC))},
	}
	p.Calendar(calendar.Month(2024, time.March, tasks, fixedNow, time.UTC))
	testutil.Golden(t, "calendar_march_2024", buf.Bytes())
}

func TestDay(t *testing.T) {
	p, buf := newTestPrinter()
	tasks := []service.Task{
		{ID: 3, Title: "soon", DueDate: due(time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC))},
	}
	g := calendar.Month(2024, time.March, tasks, fixedNow, time.UTC)
	p.Day(g, 20)
	p.Day(g, 21)
	want := "March 20, 2024\n   3  [ ] soon  (in 4 days)\nMarch 21, 2024\nno tasks\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestMarkdown(t *testing.T) {
	if Markdown("  ", 80) != "" {
		t.Error("blank markdown should render empty")
	}
	out := Markdown("**bold** text", 80)
	if !strings.Contains(out, "bold") || !strings.Contains(out, "text") {
		t.Errorf("unexpected render %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("notty style should not emit escape codes: %q", out)
	}
}
