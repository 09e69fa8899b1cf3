package scheduling

import (
	"fmt"
	"time"
)

// WeekStart returns the Monday of the week containing t, truncated to
// midnight in t's location. Sundays belong to the week that started the
// previous Monday.
func WeekStart(t time.Time) time.Time {
	day := t.Weekday()
	diff := int(day - time.Monday)
	if day == time.Sunday {
		diff = 6
	}
	monday := t.AddDate(0, 0, -diff)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// DateForDay returns the date of day index 0-6 (Monday-Sunday) within the
// week starting at weekStart.
func DateForDay(weekStart time.Time, dayIndex int) time.Time {
	return weekStart.AddDate(0, 0, dayIndex)
}

// weekdayForIndex converts a Monday-based day index (0-6) to the calendar
// weekday used by the duration table (Sunday=0 .. Saturday=6).
func weekdayForIndex(dayIndex int) time.Weekday {
	return time.Weekday((dayIndex + 1) % 7)
}

// FormatWeekRange renders a week for display, e.g. "1 Jan - 7 Jan, 2024".
func FormatWeekRange(weekStart time.Time) string {
	end := weekStart.AddDate(0, 0, 6)
	return fmt.Sprintf("%s - %s, %d", weekStart.Format("2 Jan"), end.Format("2 Jan"), end.Year())
}
