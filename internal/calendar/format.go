package calendar

import (
	"fmt"
	"time"
)

const (
	absoluteLayout = "Jan 2, 2006 15:04"
	fullLayout     = "January 2, 2006 15:04:05"
)

// FormatRelative labels a past instant relative to now, falling back to
// an absolute date after a week.
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	}
	return t.Format(absoluteLayout)
}

// FormatDue labels a due instant relative to now.
func FormatDue(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := t.Sub(now)
	if diff < 0 {
		switch days := int(-diff / (24 * time.Hour)); days {
		case 0:
			return "Overdue"
		case 1:
			return "Overdue by 1 day"
		default:
			return fmt.Sprintf("Overdue by %d days", days)
		}
	}
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("in %dm", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("in %d days", int(diff/(24*time.Hour)))
	}
	return t.Format(absoluteLayout)
}

// FormatFull renders t with seconds and the full month name.
func FormatFull(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(fullLayout)
}
