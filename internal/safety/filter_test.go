package safety_test

import (
	"testing"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/safety"

	"github.com/google/go-cmp/cmp"
)

func exercise(name string, contraindications ...string) domain.Exercise {
	return domain.Exercise{
		Name:              name,
		Contraindications: contraindications,
	}
}

func TestFilterExercises(t *testing.T) {
	walking := exercise("Walking")
	deepSquats := exercise("Deep Squats", "knee-stress", "high-impact")
	planks := exercise("Planks", "diastasis-risk", "core-pressure")
	swimming := exercise("Swimming")

	tests := []struct {
		name        string
		exercises   []domain.Exercise
		constraints []string
		want        []domain.Exercise
	}{
		{
			name:        "no constraints returns catalog unchanged",
			exercises:   []domain.Exercise{deepSquats, planks},
			constraints: nil,
			want:        []domain.Exercise{deepSquats, planks},
		},
		{
			name:        "direct label conflict excluded",
			exercises:   []domain.Exercise{walking, deepSquats},
			constraints: []string{"knee-stress"},
			want:        []domain.Exercise{walking},
		},
		{
			name:        "alias conflict excluded",
			exercises:   []domain.Exercise{walking, planks},
			constraints: []string{"diastasis-recti"},
			want:        []domain.Exercise{walking},
		},
		{
			name:        "exercise without contraindications always survives",
			exercises:   []domain.Exercise{walking, swimming},
			constraints: []string{"diastasis-recti", "knee-pain", "pregnancy"},
			want:        []domain.Exercise{walking, swimming},
		},
		{
			name:        "order is preserved",
			exercises:   []domain.Exercise{swimming, deepSquats, walking, planks},
			constraints: []string{"knee"},
			want:        []domain.Exercise{swimming, walking, planks},
		},
		{
			name:        "unknown constraint only excludes exact matches",
			exercises:   []domain.Exercise{exercise("Yoga", "pregnancy"), walking},
			constraints: []string{"Pregnancy"},
			want:        []domain.Exercise{walking},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := safety.FilterExercises(tt.exercises, tt.constraints)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterExercises mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterExercisesSoundness(t *testing.T) {
	// Everything that survives the filter must also pass the display check
	// against the same constraints.
	catalog := []domain.Exercise{
		exercise("Walking"),
		exercise("Deep Squats", "knee-stress"),
		exercise("Crunches", "diastasis-risk"),
		exercise("Box Jumps", "high-impact", "knee-stress"),
	}
	constraints := []string{"diastasis-recti", "knee"}

	for _, safeExercise := range safety.FilterExercises(catalog, constraints) {
		if !safety.IsSafeForDisplay(safeExercise, constraints) {
			t.Errorf("filtered exercise %q fails the display check", safeExercise.Name)
		}
	}
}

func TestIsSafeForDisplay(t *testing.T) {
	deepSquats := exercise("Deep Squats", "knee-stress")

	if safety.IsSafeForDisplay(deepSquats, []string{"knee-pain"}) {
		t.Error("expected alias conflict to fail the display check")
	}
	if !safety.IsSafeForDisplay(deepSquats, nil) {
		t.Error("expected constraint-free user to pass the display check")
	}
	if !safety.IsSafeForDisplay(exercise("Walking"), []string{"knee-pain"}) {
		t.Error("expected contraindication-free exercise to pass the display check")
	}
}

func TestCheckConflicts(t *testing.T) {
	tests := []struct {
		name        string
		exercise    domain.Exercise
		constraints []string
		want        []string
	}{
		{
			name:        "no overlap",
			exercise:    exercise("Walking"),
			constraints: []string{"knee-stress"},
			want:        nil,
		},
		{
			name:        "alias overlap reports the shared class labels sorted",
			exercise:    exercise("Deep Squats", "knee-stress"),
			constraints: []string{"knee-pain"},
			want: []string{
				"chondromalacia", "high-impact", "knee", "knee-chondromalacia", "knee-impact", "knee-pain", "knee-stress",
			},
		},
		{
			name:        "unknown exact label overlap",
			exercise:    exercise("Prenatal Yoga", "pregnancy"),
			constraints: []string{"pregnancy"},
			want:        []string{"pregnancy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := safety.CheckConflicts(tt.exercise, tt.constraints)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CheckConflicts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
