package safety

import (
	"strings"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
)

// Session length limits in minutes. This is a closed decision table, not an
// extensible rule engine: the three limits below are exhaustive.
const (
	weekdayMaxMinutes        = 30
	weekendMaxMinutes        = 60
	weekendCyclingMaxMinutes = 120
)

// IsDurationAllowed reports whether the exercise's duration fits the limit
// for the given calendar weekday (time.Weekday: Sunday=0 .. Saturday=6).
//
// Weekdays cap every session at 30 minutes regardless of category. Weekend
// sport sessions whose subcategory mentions cycling get up to 120 minutes;
// any other weekend session gets up to 60.
func IsDurationAllowed(exercise domain.Exercise, day time.Weekday) bool {
	isWeekend := day == time.Sunday || day == time.Saturday

	if !isWeekend {
		return exercise.DurationMin <= weekdayMaxMinutes
	}

	if exercise.Category == domain.CategorySport &&
		strings.Contains(strings.ToLower(exercise.Subcategory), "cycling") {
		return exercise.DurationMin <= weekendCyclingMaxMinutes
	}

	return exercise.DurationMin <= weekendMaxMinutes
}
