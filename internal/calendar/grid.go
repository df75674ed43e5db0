package calendar

import (
	"time"

	"todoctl/internal/service"
)

// Day is one cell of the month grid.
type Day struct {
	Day          int
	Tasks        []service.Task
	Today        bool
	HasOverdue   bool
	HasCompleted bool
	HasActive    bool
}

// Grid is a month laid out in Monday-first weeks. Cells before the first
// and after the last day of the month are nil.
type Grid struct {
	Year  int
	Month time.Month
	Weeks [][7]*Day
}

// Weekdays are the column headers, Monday first.
var Weekdays = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Month builds the grid for year and month. Overdue and today flags are
// evaluated against now.
func Month(year int, month time.Month, tasks []service.Task, now time.Time, loc *time.Location) Grid {
	if loc == nil {
		loc = time.Local
	}
	bucket := Bucket(tasks, year, month, loc)
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := DaysIn(year, month)
	ty, tm, td := now.In(loc).Date()

	g := Grid{Year: year, Month: month}
	var week [7]*Day
	col := leadingBlanks(first.Weekday())
	for d := 1; d <= days; d++ {
		cell := &Day{
			Day:   d,
			Tasks: bucket[d],
			Today: ty == year && tm == month && td == d,
		}
		for _, t := range cell.Tasks {
			if t.Completed {
				cell.HasCompleted = true
			} else {
				cell.HasActive = true
			}
			if IsOverdue(t, now) {
				cell.HasOverdue = true
			}
		}
		week[col] = cell
		col++
		if col == 7 {
			g.Weeks = append(g.Weeks, week)
			week = [7]*Day{}
			col = 0
		}
	}
	if col > 0 {
		g.Weeks = append(g.Weeks, week)
	}
	return g
}

// DaysIn returns the number of days in month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// leadingBlanks maps a weekday to its Monday-first column.
func leadingBlanks(w time.Weekday) int {
	if w == time.Sunday {
		return 6
	}
	return int(w) - 1
}
