package scheduling

import (
	"fmt"
	"math"
)

// Algorithmic 14-week cycling progression building to a 68-mile event.
// Purely formula-driven, no catalog involved.

// CyclingPhase of the training plan.
type CyclingPhase string

const (
	PhaseBase  CyclingPhase = "base"
	PhaseBuild CyclingPhase = "build"
	PhaseTaper CyclingPhase = "taper"
)

// RideIntensity of a planned ride.
type RideIntensity string

const (
	RideRecovery  RideIntensity = "recovery"
	RideEndurance RideIntensity = "endurance"
	RideTempo     RideIntensity = "tempo"
	RideIntervals RideIntensity = "intervals"
)

// CyclingRide is one planned weekly long ride.
type CyclingRide struct {
	Week          int           `json:"week"`
	Phase         CyclingPhase  `json:"phase"`
	DistanceMiles int           `json:"distanceMiles"`
	DurationMin   int           `json:"durationMin"`
	Intensity     RideIntensity `json:"intensity"`
	Description   string        `json:"description"`
}

const (
	cyclingTotalWeeks = 14
	basePhaseWeeks    = 5 // weeks 1-5: build aerobic base
	buildPhaseWeeks   = 7 // weeks 6-12: increase intensity and distance
)

// CyclingPhaseFor returns the phase for a plan week (1-14).
func CyclingPhaseFor(week int) (CyclingPhase, error) {
	if week < 1 || week > cyclingTotalWeeks {
		return "", fmt.Errorf("invalid week number: %d, must be 1-%d", week, cyclingTotalWeeks)
	}
	switch {
	case week <= basePhaseWeeks:
		return PhaseBase, nil
	case week <= basePhaseWeeks+buildPhaseWeeks:
		return PhaseBuild, nil
	default:
		return PhaseTaper, nil
	}
}

// SuggestCyclingRide returns the planned ride for a plan week (1-14).
func SuggestCyclingRide(week int) (CyclingRide, error) {
	phase, err := CyclingPhaseFor(week)
	if err != nil {
		return CyclingRide{}, err
	}
	switch phase {
	case PhaseBase:
		return baseRide(week), nil
	case PhaseBuild:
		return buildRide(week), nil
	default:
		return taperRide(week), nil
	}
}

// FullCyclingPlan returns all 14 planned rides.
func FullCyclingPlan() []CyclingRide {
	plan := make([]CyclingRide, 0, cyclingTotalWeeks)
	for week := 1; week <= cyclingTotalWeeks; week++ {
		ride, _ := SuggestCyclingRide(week)
		plan = append(plan, ride)
	}
	return plan
}

// baseRide: start at 20 miles, add 5 per week, conservative 13 mph pace.
func baseRide(week int) CyclingRide {
	distance := 15 + week*5
	duration := int(math.Round(float64(distance) / 13 * 60))

	intensity := RideEndurance
	description := fmt.Sprintf("Steady endurance ride at conversational pace. Build aerobic base. %d miles.", distance)
	if week == 1 {
		intensity = RideRecovery
		description = "Easy spin to assess current fitness. Focus on form and comfort."
	}

	return CyclingRide{
		Week:          week,
		Phase:         PhaseBase,
		DistanceMiles: distance,
		DurationMin:   duration,
		Intensity:     intensity,
		Description:   description,
	}
}

// buildRide: progressive distances with rotating intensity; 13 mph for
// endurance weeks, 15 mph for tempo/interval weeks.
func buildRide(week int) CyclingRide {
	weekInPhase := week - basePhaseWeeks

	distances := []int{45, 50, 55, 58, 60, 62, 65}
	intensities := []RideIntensity{RideEndurance, RideTempo, RideIntervals, RideEndurance, RideTempo, RideEndurance, RideTempo}

	distance := 65
	intensity := RideEndurance
	if weekInPhase >= 1 && weekInPhase <= len(distances) {
		distance = distances[weekInPhase-1]
		intensity = intensities[weekInPhase-1]
	}

	avgSpeed := 15.0
	if intensity == RideEndurance {
		avgSpeed = 13.0
	}
	duration := int(math.Round(float64(distance) / avgSpeed * 60))

	var description string
	switch intensity {
	case RideTempo:
		description = fmt.Sprintf("Tempo ride with 2-3 x 10min efforts at comfortably hard pace. %d miles.", distance)
	case RideIntervals:
		description = fmt.Sprintf("Interval session: 5 x 5min hard efforts with 3min recovery. %d miles.", distance)
	default:
		description = fmt.Sprintf("Steady endurance ride. Maintain conversational pace. %d miles.", distance)
	}

	return CyclingRide{
		Week:          week,
		Phase:         PhaseBuild,
		DistanceMiles: distance,
		DurationMin:   duration,
		Intensity:     intensity,
		Description:   description,
	}
}

// taperRide: reduced volume, intensity maintained then dropped before the
// event.
func taperRide(week int) CyclingRide {
	if week-basePhaseWeeks-buildPhaseWeeks == 1 {
		return CyclingRide{
			Week:          week,
			Phase:         PhaseTaper,
			DistanceMiles: 45,
			DurationMin:   200,
			Intensity:     RideTempo,
			Description:   "Taper week 1: Reduced volume but maintain intensity. 2 x 15min tempo efforts. 45 miles.",
		}
	}
	return CyclingRide{
		Week:          week,
		Phase:         PhaseTaper,
		DistanceMiles: 30,
		DurationMin:   120,
		Intensity:     RideRecovery,
		Description:   "Final taper week: Easy spin to stay loose. Focus on rest and nutrition. 30 miles.",
	}
}
