package scheduling_test

import (
	"testing"

	"alcyxob/fitness-scheduler/internal/scheduling"
)

func TestCyclingPhaseFor(t *testing.T) {
	tests := []struct {
		week    int
		want    scheduling.CyclingPhase
		wantErr bool
	}{
		{week: 0, wantErr: true},
		{week: 15, wantErr: true},
		{week: 1, want: scheduling.PhaseBase},
		{week: 5, want: scheduling.PhaseBase},
		{week: 6, want: scheduling.PhaseBuild},
		{week: 12, want: scheduling.PhaseBuild},
		{week: 13, want: scheduling.PhaseTaper},
		{week: 14, want: scheduling.PhaseTaper},
	}

	for _, tt := range tests {
		got, err := scheduling.CyclingPhaseFor(tt.week)
		if tt.wantErr {
			if err == nil {
				t.Errorf("CyclingPhaseFor(%d): expected error", tt.week)
			}
			continue
		}
		if err != nil {
			t.Errorf("CyclingPhaseFor(%d): %v", tt.week, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CyclingPhaseFor(%d) = %q, want %q", tt.week, got, tt.want)
		}
	}
}

func TestSuggestCyclingRide(t *testing.T) {
	t.Run("week 1 is an easy assessment spin", func(t *testing.T) {
		ride, err := scheduling.SuggestCyclingRide(1)
		if err != nil {
			t.Fatal(err)
		}
		if ride.Intensity != scheduling.RideRecovery {
			t.Errorf("week 1 intensity = %q, want recovery", ride.Intensity)
		}
		if ride.DistanceMiles != 20 {
			t.Errorf("week 1 distance = %d, want 20", ride.DistanceMiles)
		}
	})

	t.Run("base distances grow 5 miles per week", func(t *testing.T) {
		previous := 0
		for week := 1; week <= 5; week++ {
			ride, err := scheduling.SuggestCyclingRide(week)
			if err != nil {
				t.Fatal(err)
			}
			if week > 1 && ride.DistanceMiles != previous+5 {
				t.Errorf("week %d distance = %d, want %d", week, ride.DistanceMiles, previous+5)
			}
			previous = ride.DistanceMiles
		}
	})

	t.Run("build phase peaks at 65 miles", func(t *testing.T) {
		ride, err := scheduling.SuggestCyclingRide(12)
		if err != nil {
			t.Fatal(err)
		}
		if ride.Phase != scheduling.PhaseBuild || ride.DistanceMiles != 65 {
			t.Errorf("week 12 = %+v, want 65-mile build ride", ride)
		}
	})

	t.Run("tempo weeks ride faster than endurance weeks", func(t *testing.T) {
		endurance, err := scheduling.SuggestCyclingRide(9) // 58 miles endurance
		if err != nil {
			t.Fatal(err)
		}
		tempo, err := scheduling.SuggestCyclingRide(10) // 60 miles tempo
		if err != nil {
			t.Fatal(err)
		}
		// 58mi at 13mph is longer than 60mi at 15mph.
		if endurance.DurationMin <= tempo.DurationMin {
			t.Errorf("endurance %dmin should exceed tempo %dmin", endurance.DurationMin, tempo.DurationMin)
		}
	})

	t.Run("taper reduces volume into the event", func(t *testing.T) {
		first, err := scheduling.SuggestCyclingRide(13)
		if err != nil {
			t.Fatal(err)
		}
		final, err := scheduling.SuggestCyclingRide(14)
		if err != nil {
			t.Fatal(err)
		}
		if first.DistanceMiles != 45 || first.Intensity != scheduling.RideTempo {
			t.Errorf("week 13 = %+v, want 45-mile tempo", first)
		}
		if final.DistanceMiles != 30 || final.Intensity != scheduling.RideRecovery {
			t.Errorf("week 14 = %+v, want 30-mile recovery", final)
		}
	})
}

func TestFullCyclingPlan(t *testing.T) {
	plan := scheduling.FullCyclingPlan()
	if len(plan) != 14 {
		t.Fatalf("expected 14 rides, got %d", len(plan))
	}
	for i, ride := range plan {
		if ride.Week != i+1 {
			t.Errorf("ride %d has week %d", i, ride.Week)
		}
		if ride.DurationMin <= 0 || ride.DistanceMiles <= 0 {
			t.Errorf("week %d ride has non-positive volume: %+v", ride.Week, ride)
		}
		if ride.Description == "" {
			t.Errorf("week %d ride has no description", ride.Week)
		}
	}
}
