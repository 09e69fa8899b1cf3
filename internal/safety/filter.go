package safety

import (
	"sort"

	"alcyxob/fitness-scheduler/internal/domain"
)

// FilterExercises returns the order-preserving subsequence of exercises that
// are safe for a user with the given constraints.
//
// This is Layer 2 of the defence: the catalog read (Layer 1) is expected to
// have filtered already, but this re-check must stand on its own. An exercise
// is excluded on any overlap between its normalized contraindications and the
// normalized constraints; a single shared label, even via alias, is enough.
// There is no partial-safety notion.
func FilterExercises(exercises []domain.Exercise, userConstraints []string) []domain.Exercise {
	if len(userConstraints) == 0 {
		return exercises
	}

	normalizedConstraints := Normalize(userConstraints)

	safe := make([]domain.Exercise, 0, len(exercises))
	for _, exercise := range exercises {
		if isDisjoint(exercise, normalizedConstraints) {
			safe = append(safe, exercise)
		}
	}
	return safe
}

// IsSafeForDisplay is the final display-time check: same contract as
// FilterExercises but for a single already-assigned exercise immediately
// before it is rendered. It catches assignments that bypassed Layers 1-2,
// e.g. stale data or a manual override.
func IsSafeForDisplay(exercise domain.Exercise, userConstraints []string) bool {
	if len(userConstraints) == 0 {
		return true
	}
	return isDisjoint(exercise, Normalize(userConstraints))
}

// CheckConflicts returns the sorted conflicting labels between an exercise's
// normalized contraindications and the normalized user constraints. Empty
// means the pairing is safe.
func CheckConflicts(exercise domain.Exercise, userConstraints []string) []string {
	conflicts := intersect(Normalize(exercise.Contraindications), Normalize(userConstraints))
	sort.Strings(conflicts)
	return conflicts
}

// isDisjoint reports whether the exercise's normalized contraindications
// share no label with the normalized constraint set. Exercises without
// contraindications are universally safe.
func isDisjoint(exercise domain.Exercise, normalizedConstraints map[string]struct{}) bool {
	if len(exercise.Contraindications) == 0 {
		return true
	}
	normalizedExercise := Normalize(exercise.Contraindications)
	return len(intersect(normalizedExercise, normalizedConstraints)) == 0
}
