package scheduling

import (
	"fmt"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/safety"
)

// ValidationResult aggregates the findings of an offline schedule check.
// Valid is true iff Errors is empty.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ValidateSchedule checks a proposed week before it is persisted or
// activated. Index 0 is Monday; a nil entry is a rest day, so exercises keep
// their real weekday alignment. Safety violations are converted into error
// strings rather than propagated: this is a pre-save check, not a crash
// point. It never fails for data-shape reasons, it only aggregates findings.
//
// Checks: no contraindication overlap with the user's declared constraints,
// no run of more than two consecutive days in the same category, and every
// day's duration within the limit for its weekday.
func ValidateSchedule(week []*domain.Exercise, user *domain.User) ValidationResult {
	var errs []string

	for _, exercise := range week {
		if exercise == nil {
			continue
		}
		conflicts := safety.CheckConflicts(*exercise, user.HealthConstraints)
		if len(conflicts) > 0 {
			violation := safety.SafetyViolation{
				ExerciseID:      exercise.ID,
				ExerciseName:    exercise.Name,
				UserID:          user.ID,
				UserName:        user.Name,
				UserConstraints: user.HealthConstraints,
				Conflicts:       conflicts,
				Context:         "schedule validation",
			}
			errs = append(errs, fmt.Sprintf("Safety violation: %v", violation.Error()))
		}
	}

	// Variety rule: more than two consecutive days in one category is
	// flagged. A rest day breaks a run.
	consecutive := 0
	var lastCategory domain.Category
	for i, exercise := range week {
		if exercise == nil {
			consecutive = 0
			lastCategory = ""
			continue
		}
		if consecutive > 0 && lastCategory == exercise.Category {
			consecutive++
			if consecutive > 2 {
				errs = append(errs, fmt.Sprintf("Too many consecutive %s workouts (days %d-%d)", exercise.Category, i-1, i))
			}
		} else {
			consecutive = 1
			lastCategory = exercise.Category
		}
	}

	for i, exercise := range week {
		if exercise == nil {
			continue
		}
		day := weekdayForIndex(i)
		if !safety.IsDurationAllowed(*exercise, day) {
			errs = append(errs, fmt.Sprintf("Exercise %q duration (%dmin) exceeds limit for %s", exercise.Name, exercise.DurationMin, dayNames[i%7]))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
