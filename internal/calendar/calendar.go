// Package calendar projects tasks onto a month view and resolves day clicks.
package calendar

import (
	"time"

	"todoctl/internal/service"
)

// DefaultHour is the hour pre-filled when creating a task from an empty day.
const DefaultHour = 12

// Bucket groups tasks by the day of month their due date falls on in loc,
// restricted to year and month. Order within a day follows tasks.
func Bucket(tasks []service.Task, year int, month time.Month, loc *time.Location) map[int][]service.Task {
	if loc == nil {
		loc = time.Local
	}
	out := make(map[int][]service.Task)
	for _, t := range tasks {
		if t.DueDate == nil || t.DueDate.IsZero() {
			continue
		}
		y, m, d := t.DueDate.In(loc).Date()
		if y != year || m != month {
			continue
		}
		out[d] = append(out[d], t)
	}
	return out
}

// ClickKind says what a click on a day cell should open.
type ClickKind int

const (
	// ClickCreate opens a creation form for the day.
	ClickCreate ClickKind = iota
	// ClickEdit opens the day's only task.
	ClickEdit
	// ClickChoose leaves the choice among several tasks to the caller.
	ClickChoose
)

func (k ClickKind) String() string {
	switch k {
	case ClickCreate:
		return "create"
	case ClickEdit:
		return "edit"
	case ClickChoose:
		return "choose"
	}
	return "unknown"
}

// Click is the outcome of clicking a day.
type Click struct {
	Kind  ClickKind
	Draft service.Draft  // ClickCreate
	Task  service.Task   // ClickEdit
	Tasks []service.Task // ClickChoose
}

// Resolve decides what clicking day should do given that month's bucket.
func Resolve(year int, month time.Month, day int, bucket map[int][]service.Task, loc *time.Location) Click {
	if loc == nil {
		loc = time.Local
	}
	tasks := bucket[day]
	switch len(tasks) {
	case 0:
		due := time.Date(year, month, day, DefaultHour, 0, 0, 0, loc)
		return Click{Kind: ClickCreate, Draft: service.Draft{DueDate: service.NewTimestamp(due)}}
	case 1:
		return Click{Kind: ClickEdit, Task: tasks[0]}
	default:
		out := make([]service.Task, len(tasks))
		copy(out, tasks)
		return Click{Kind: ClickChoose, Tasks: out}
	}
}

// IsOverdue reports whether t is open and due strictly before now.
func IsOverdue(t service.Task, now time.Time) bool {
	return !t.Completed && t.DueDate != nil && !t.DueDate.IsZero() && t.DueDate.Before(now)
}
