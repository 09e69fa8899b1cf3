package safety_test

import (
	"testing"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/safety"
)

func TestIsDurationAllowed(t *testing.T) {
	tests := []struct {
		name     string
		exercise domain.Exercise
		day      time.Weekday
		want     bool
	}{
		{
			name:     "weekday at the 30 minute limit",
			exercise: domain.Exercise{Category: domain.CategoryStrength, DurationMin: 30},
			day:      time.Monday,
			want:     true,
		},
		{
			name:     "weekday one minute over",
			exercise: domain.Exercise{Category: domain.CategoryStrength, DurationMin: 31},
			day:      time.Wednesday,
			want:     false,
		},
		{
			name:     "weekday limit applies to cycling too",
			exercise: domain.Exercise{Category: domain.CategorySport, Subcategory: "cycling", DurationMin: 45},
			day:      time.Monday,
			want:     false,
		},
		{
			name:     "weekend at the 60 minute limit",
			exercise: domain.Exercise{Category: domain.CategoryCardio, DurationMin: 60},
			day:      time.Saturday,
			want:     true,
		},
		{
			name:     "weekend one minute over for non-cycling",
			exercise: domain.Exercise{Category: domain.CategoryCardio, DurationMin: 61},
			day:      time.Sunday,
			want:     false,
		},
		{
			name:     "weekend cycling at the 120 minute limit",
			exercise: domain.Exercise{Category: domain.CategorySport, Subcategory: "cycling", DurationMin: 120},
			day:      time.Sunday,
			want:     true,
		},
		{
			name:     "weekend cycling one minute over",
			exercise: domain.Exercise{Category: domain.CategorySport, Subcategory: "cycling", DurationMin: 121},
			day:      time.Saturday,
			want:     false,
		},
		{
			name:     "cycling subcategory match is case-insensitive substring",
			exercise: domain.Exercise{Category: domain.CategorySport, Subcategory: "Road Cycling", DurationMin: 90},
			day:      time.Saturday,
			want:     true,
		},
		{
			name:     "non-sport cycling-named exercise gets the plain weekend limit",
			exercise: domain.Exercise{Category: domain.CategoryCardio, Subcategory: "cycling", DurationMin: 90},
			day:      time.Saturday,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safety.IsDurationAllowed(tt.exercise, tt.day); got != tt.want {
				t.Errorf("IsDurationAllowed(%dmin, %s) = %v, want %v",
					tt.exercise.DurationMin, tt.day, got, tt.want)
			}
		})
	}
}
