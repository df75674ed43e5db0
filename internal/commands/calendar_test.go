package commands_test

import (
	"strings"
	"testing"
	"time"

	"todoctl/internal/commands"
	"todoctl/internal/exitcode"
	"todoctl/internal/testutil"
)

func calendarFixture() (*testutil.FakeService, *commands.CalendarCmd) {
	at := func(day, hour int) *time.Time {
		t := time.Date(2024, time.March, day, hour, 0, 0, 0, time.Local)
		return &t
	}
	svc := testutil.NewFakeService()
	svc.AddTask("Dentist", false, at(4, 9))
	svc.AddTask("Taxes", true, at(18, 10))
	svc.AddTask("Report", false, at(20, 12))
	svc.AddTask("Someday", false, nil)

	cmd := &commands.CalendarCmd{Now: func() time.Time {
		return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.Local)
	}}
	return svc, cmd
}

func TestCalendarCommand_Month(t *testing.T) {
	svc, cmd := calendarFixture()

	r := runCommand(t, cmd, svc, nil, "")
	expectCode(t, r, exitcode.Success)
	testutil.GoldenString(t, "calendar_month", r.stdout)
}

func TestCalendarCommand_OtherMonth(t *testing.T) {
	svc, cmd := calendarFixture()

	r := runCommand(t, cmd, svc, []string{"--month", "2024-09"}, "")
	expectCode(t, r, exitcode.Success)
	lines := strings.Split(r.stdout, "\n")
	if lines[0] != "September 2024" {
		t.Errorf("unexpected heading %q", lines[0])
	}
	if strings.ContainsAny(r.stdout, "!*+") {
		t.Errorf("expected no markers in September:\n%s", r.stdout)
	}
}

func TestCalendarCommand_Days(t *testing.T) {
	tests := []struct {
		name string
		day  string
		want []string
	}{
		{"empty day offers creation", "10", []string{
			"March 10, 2024\n",
			"no tasks\n",
			"add one with: todoctl add --due 2024-03-10T12:00 <title>\n",
		}},
		{"single task opens details", "20", []string{
			"#3 Report\n",
			"due:     March 20, 2024 12:00:00 (in 5 days)\n",
		}},
		{"overdue task", "4", []string{
			"#1 Dentist\n",
			"status:  overdue\n",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, cmd := calendarFixture()
			r := runCommand(t, cmd, svc, []string{"--day", tt.day}, "")
			expectCode(t, r, exitcode.Success)
			for _, want := range tt.want {
				if !strings.Contains(r.stdout, want) {
					t.Errorf("expected %q in output:\n%s", want, r.stdout)
				}
			}
		})
	}
}

func TestCalendarCommand_ChooseAmongTasks(t *testing.T) {
	svc, cmd := calendarFixture()
	gym := time.Date(2024, time.March, 18, 18, 0, 0, 0, time.Local)
	svc.AddTask("Gym", false, &gym)

	r := runCommand(t, cmd, svc, []string{"-d", "18"}, "")
	expectCode(t, r, exitcode.Success)
	if !strings.HasPrefix(r.stdout, "March 18, 2024\n") {
		t.Errorf("expected day heading, got %q", r.stdout)
	}
	for _, title := range []string{"Taxes", "Gym"} {
		if !strings.Contains(r.stdout, title) {
			t.Errorf("expected %s listed:\n%s", title, r.stdout)
		}
	}
	if strings.Contains(r.stdout, "status:") {
		t.Error("several tasks must not open a detail view")
	}
}

func TestCalendarCommand_BadFlags(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--month", "March"}, "error: invalid month: March (want YYYY-MM)\n"},
		{[]string{"--day", "40"}, "error: day out of range: 40\n"},
		{[]string{"--month", "2023-02", "--day", "29"}, "error: day out of range: 29\n"},
	}
	for _, tt := range tests {
		svc, cmd := calendarFixture()
		r := runCommand(t, cmd, svc, tt.args, "")
		expectCode(t, r, exitcode.UserError)
		if r.stderr != tt.want {
			t.Errorf("%v: got %q, want %q", tt.args, r.stderr, tt.want)
		}
		if svc.CallCount("ListTodos") != 0 {
			t.Errorf("%v: expected no backend call", tt.args)
		}
	}
}
