package output

import (
	"fmt"
	"strings"

	"todoctl/internal/calendar"
)

// Day markers, in precedence order.
const (
	markOverdue = '!'
	markActive  = '*'
	markDone    = '+'
)

// Calendar writes a month grid. Each cell is the day number followed by a
// marker: '!' has an overdue task, '*' has open tasks, '+' has only done tasks.
func (p *Printer) Calendar(g calendar.Grid) {
	title := fmt.Sprintf("%s %d", g.Month, g.Year)
	fmt.Fprintln(p.w, p.header.Render(title))

	head := make([]string, len(calendar.Weekdays))
	for i, wd := range calendar.Weekdays {
		head[i] = fmt.Sprintf("%-3s", wd)
	}
	fmt.Fprintln(p.w, strings.TrimRight(strings.Join(head, " "), " "))

	for _, week := range g.Weeks {
		cells := make([]string, len(week))
		for i, d := range week {
			cells[i] = p.cell(d)
		}
		fmt.Fprintln(p.w, strings.TrimRight(strings.Join(cells, " "), " "))
	}
}

func (p *Printer) cell(d *calendar.Day) string {
	if d == nil {
		return "   "
	}
	mark := ' '
	switch {
	case d.HasOverdue:
		mark = markOverdue
	case d.HasActive:
		mark = markActive
	case d.HasCompleted:
		mark = markDone
	}
	num := fmt.Sprintf("%2d", d.Day)
	if d.Today {
		num = p.today.Render(num)
	}
	s := num + string(mark)
	if mark == markOverdue {
		s = num + p.overdue.Render(string(mark))
	}
	return s
}

// Day writes the tasks of one calendar day under a dated heading.
func (p *Printer) Day(g calendar.Grid, day int) {
	fmt.Fprintln(p.w, p.header.Render(fmt.Sprintf("%s %d, %d", g.Month, day, g.Year)))
	for _, week := range g.Weeks {
		for _, d := range week {
			if d != nil && d.Day == day {
				p.Tasks(d.Tasks)
				return
			}
		}
	}
	p.Tasks(nil)
}
