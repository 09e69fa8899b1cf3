// Package scheduling generates and validates weekly workout schedules.
//
// Safety is enforced upstream: every catalog passed in here must already be
// safety-filtered for the user, and the caller runs the safety asserter
// around generation. The generator itself enforces only the duration table
// (hard) and the variety rule (soft, degrades gracefully).
package scheduling

import (
	"errors"
	"log"
	"math/rand"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/safety"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrEmptyCatalog is returned when there are no safe exercises to schedule
// from. An empty safe catalog indicates an upstream data problem, not a valid
// all-rest week, so generation fails fast instead of producing seven rest
// days.
var ErrEmptyCatalog = errors.New("no safe exercises available to schedule from")

// RestReasonDuration explains a rest day caused by the duration table leaving
// no candidates for that weekday.
const RestReasonDuration = "no options meet duration limit"

// DaySuggestion is one generated day: either an exercise pick or a rest day
// with a reason.
type DaySuggestion struct {
	Date     time.Time
	Exercise *domain.Exercise

	RestReason string // set only for rest days

	// VarietyRelaxed marks that the variety rule had to be relaxed for this
	// day: every candidate shared the previous day's category.
	VarietyRelaxed bool
}

// IsRest reports whether the day is a rest day.
func (d DaySuggestion) IsRest() bool { return d.Exercise == nil }

// WeekPreview is a generated week that has not been persisted, for UI preview
// before the user confirms.
type WeekPreview struct {
	Days         []DaySuggestion
	TotalMinutes int
	Categories   []domain.Category
}

// Generator produces weekly schedules from a pre-filtered catalog.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator constructs a Generator around the given randomness source so
// output is reproducible in tests. A nil source gets a time-seeded one.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// GenerateWeek produces exactly seven day suggestions, Monday through Sunday,
// starting at weekStart (must be the Monday).
//
// Per day: candidates failing the duration table for that calendar weekday
// are dropped first; an empty pool makes the day a rest day. Otherwise the
// variety rule excludes the previous day's category, falling back to the full
// duration-filtered pool when that empties. Selection within the final pool
// is uniform.
func (g *Generator) GenerateWeek(weekStart time.Time, catalog []domain.Exercise) ([]DaySuggestion, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	days := make([]DaySuggestion, 0, 7)
	var previousCategory domain.Category

	for dayIndex := 0; dayIndex < 7; dayIndex++ {
		date := DateForDay(weekStart, dayIndex)
		suggestion := g.suggestForDay(catalog, previousCategory, date)

		if suggestion.IsRest() {
			previousCategory = ""
		} else {
			previousCategory = suggestion.Exercise.Category
		}
		days = append(days, suggestion)
	}

	return days, nil
}

// PreviewWeek runs the same walk as GenerateWeek and aggregates totals for
// display. An empty catalog previews as an empty week rather than an error.
func (g *Generator) PreviewWeek(weekStart time.Time, catalog []domain.Exercise) WeekPreview {
	if len(catalog) == 0 {
		return WeekPreview{}
	}

	days, err := g.GenerateWeek(weekStart, catalog)
	if err != nil {
		return WeekPreview{}
	}

	preview := WeekPreview{Days: days}
	seen := make(map[domain.Category]struct{})
	for _, day := range days {
		if day.IsRest() {
			continue
		}
		preview.TotalMinutes += day.Exercise.DurationMin
		if _, ok := seen[day.Exercise.Category]; !ok {
			seen[day.Exercise.Category] = struct{}{}
			preview.Categories = append(preview.Categories, day.Exercise.Category)
		}
	}
	return preview
}

// RegenerateDay picks a fresh exercise for one day, excluding the given
// exercise IDs (e.g. the pick the user is swapping out). Returns a rest-day
// suggestion when nothing remains.
func (g *Generator) RegenerateDay(catalog []domain.Exercise, excludeIDs []primitive.ObjectID, previousCategory domain.Category, date time.Time) DaySuggestion {
	excluded := make(map[primitive.ObjectID]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	available := make([]domain.Exercise, 0, len(catalog))
	for _, exercise := range catalog {
		if _, ok := excluded[exercise.ID]; !ok {
			available = append(available, exercise)
		}
	}

	if len(available) == 0 {
		return DaySuggestion{Date: date, RestReason: RestReasonDuration}
	}
	return g.suggestForDay(available, previousCategory, date)
}

// suggestForDay applies the per-day state machine: duration filter, then the
// soft variety rule with fallback.
func (g *Generator) suggestForDay(catalog []domain.Exercise, previousCategory domain.Category, date time.Time) DaySuggestion {
	day := date.Weekday()

	durationFiltered := make([]domain.Exercise, 0, len(catalog))
	for _, exercise := range catalog {
		if safety.IsDurationAllowed(exercise, day) {
			durationFiltered = append(durationFiltered, exercise)
		}
	}

	if len(durationFiltered) == 0 {
		return DaySuggestion{Date: date, RestReason: RestReasonDuration}
	}

	if previousCategory != "" {
		varietyFiltered := make([]domain.Exercise, 0, len(durationFiltered))
		for _, exercise := range durationFiltered {
			if exercise.Category != previousCategory {
				varietyFiltered = append(varietyFiltered, exercise)
			}
		}

		if len(varietyFiltered) > 0 {
			pick := g.pick(varietyFiltered)
			return DaySuggestion{Date: date, Exercise: &pick}
		}

		log.Printf("WARN: %s: no variety options available, allowing category repeat: %s",
			date.Format("2006-01-02"), previousCategory)
		pick := g.pick(durationFiltered)
		return DaySuggestion{Date: date, Exercise: &pick, VarietyRelaxed: true}
	}

	pick := g.pick(durationFiltered)
	return DaySuggestion{Date: date, Exercise: &pick}
}

// pick selects uniformly from a non-empty pool.
func (g *Generator) pick(pool []domain.Exercise) domain.Exercise {
	return pool[g.rng.Intn(len(pool))]
}
