package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/repository"
	"alcyxob/fitness-scheduler/internal/safety"
	"alcyxob/fitness-scheduler/internal/scheduling"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrScheduleNotFound = errors.New("no schedule for this week")
	ErrWorkoutNotFound  = errors.New("scheduled workout not found")
	// ErrNoSafeExercises means the safe catalog came back empty. Callers
	// must surface "cannot generate a schedule", never persist a partial
	// result.
	ErrNoSafeExercises = errors.New("no safe exercises available for user")
	// ErrWorkoutConflict means the slot was modified concurrently and the
	// caller's revision is stale.
	ErrWorkoutConflict = errors.New("workout was modified concurrently, reload and retry")
)

// WeekSchedule bundles a weekly schedule with its seven day slots.
type WeekSchedule struct {
	Schedule domain.WorkoutSchedule   `json:"schedule"`
	Workouts []domain.ScheduledWorkout `json:"workouts"`
}

// ScheduleService orchestrates the safety engine: constraint assembly,
// catalog filtering, assertion, generation, validation and persistence.
type ScheduleService interface {
	// GenerateWeek builds and persists a full week for the user, replacing
	// any existing schedule for that week.
	GenerateWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*WeekSchedule, error)
	// PreviewWeek runs generation without persisting anything.
	PreviewWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (scheduling.WeekPreview, error)
	GetWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*WeekSchedule, error)

	// SafeCatalog returns the exercises safe for the user: Layer-1 store
	// query plus Layer-2 re-filter, with pain-derived constraints unioned in.
	SafeCatalog(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)

	// ValidateWeek is the offline pre-save check for a proposed week of
	// exercises (index 0 = Monday, a zero ObjectID marks a rest day).
	// Findings are returned, never thrown.
	ValidateWeek(ctx context.Context, userID primitive.ObjectID, exerciseIDs []primitive.ObjectID) (scheduling.ValidationResult, error)

	// RegenerateDay swaps one day slot's exercise for a fresh safe pick.
	RegenerateDay(ctx context.Context, userID, workoutID primitive.ObjectID, revision int64) (*domain.ScheduledWorkout, error)
	CompleteWorkout(ctx context.Context, workoutID primitive.ObjectID, revision int64, note string) (*domain.ScheduledWorkout, error)
	SkipWorkout(ctx context.Context, workoutID primitive.ObjectID, revision int64, reason string) (*domain.ScheduledWorkout, error)

	// AuditTrail returns the assignment decisions recorded for a user,
	// oldest first.
	AuditTrail(ctx context.Context, userID primitive.ObjectID) ([]domain.AuditRecord, error)
}

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	userRepo     repository.UserRepository
	exerciseRepo repository.ExerciseRepository
	painRepo     repository.PainReportRepository
	scheduleRepo repository.ScheduleRepository
	auditRepo    repository.AuditRepository
	asserter     *safety.Asserter
	generator    *scheduling.Generator
	now          func() time.Time
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	userRepo repository.UserRepository,
	exerciseRepo repository.ExerciseRepository,
	painRepo repository.PainReportRepository,
	scheduleRepo repository.ScheduleRepository,
	auditRepo repository.AuditRepository,
	asserter *safety.Asserter,
	generator *scheduling.Generator,
) ScheduleService {
	return &scheduleService{
		userRepo:     userRepo,
		exerciseRepo: exerciseRepo,
		painRepo:     painRepo,
		scheduleRepo: scheduleRepo,
		auditRepo:    auditRepo,
		asserter:     asserter,
		generator:    generator,
		now:          time.Now,
	}
}

// effectiveConstraints unions the user's declared constraints with
// contraindications derived from active pain reports. Union is the whole
// contract: no precedence rules between the two sources.
func (s *scheduleService) effectiveConstraints(ctx context.Context, user *domain.User) ([]string, error) {
	now := s.now()
	since := now.AddDate(0, 0, -domain.PainActiveWindowDays)
	reports, err := s.painRepo.GetActiveSince(ctx, user.ID, since)
	if err != nil {
		return nil, err
	}

	derived := safety.DeriveContraindications(safety.ActiveReports(reports, now))
	return cleanLabels(append(append([]string{}, user.HealthConstraints...), derived...)), nil
}

// SafeCatalog fetches the user's safe exercise set through Layers 1 and 2.
func (s *scheduleService) SafeCatalog(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	_, catalog, err := s.safeCatalogWithUser(ctx, userID)
	return catalog, err
}

func (s *scheduleService) safeCatalogWithUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, []domain.Exercise, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	constraints, err := s.effectiveConstraints(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	// Layer 1: query-time pre-filter on the expanded constraint classes.
	expanded := safety.Normalize(constraints)
	expandedList := make([]string, 0, len(expanded))
	for label := range expanded {
		expandedList = append(expandedList, label)
	}
	catalog, err := s.exerciseRepo.GetSafeForConstraints(ctx, expandedList)
	if err != nil {
		return nil, nil, err
	}

	// Layer 2: in-process re-filter. The store filter is an optimization,
	// never trusted on its own.
	return user, safety.FilterExercises(catalog, constraints), nil
}

// GenerateWeek builds a full week and persists it, replacing any prior
// schedule for the same week.
func (s *scheduleService) GenerateWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*WeekSchedule, error) {
	weekStart = scheduling.WeekStart(weekStart.UTC())

	user, catalog, err := s.safeCatalogWithUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, ErrNoSafeExercises
	}

	// Defense in depth: re-assert every candidate independently of the
	// filter before it can be scheduled.
	approved, err := s.asserter.AssertAllSafe(ctx, catalog, user, "weekly schedule generation")
	if err != nil {
		return nil, err
	}
	checked := make([]domain.Exercise, 0, len(approved))
	for _, a := range approved {
		checked = append(checked, a.Exercise())
	}
	if len(checked) == 0 {
		return nil, ErrNoSafeExercises
	}

	days, err := s.generator.GenerateWeek(weekStart, checked)
	if err != nil {
		if errors.Is(err, scheduling.ErrEmptyCatalog) {
			return nil, ErrNoSafeExercises
		}
		return nil, err
	}

	// Pre-save validation. Variety findings are expected when the fallback
	// path ran, so findings are logged rather than blocking: duration and
	// safety are enforced upstream, variety is soft.
	week := make([]*domain.Exercise, len(days))
	for i, day := range days {
		week[i] = day.Exercise
	}
	if result := scheduling.ValidateSchedule(week, user); !result.Valid {
		for _, finding := range result.Errors {
			log.Printf("WARN: generated schedule finding for user %s: %s", user.ID.Hex(), finding)
		}
	}

	schedule, err := s.replaceSchedule(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}

	for _, day := range days {
		workout := &domain.ScheduledWorkout{
			ScheduleID:     schedule.ID,
			Date:           day.Date,
			Status:         domain.WorkoutPending,
			RestDay:        day.IsRest(),
			RestReason:     day.RestReason,
			VarietyRelaxed: day.VarietyRelaxed,
		}
		if !day.IsRest() {
			workout.Exercise = &domain.ExerciseSnapshot{
				ExerciseID:  day.Exercise.ID,
				Name:        day.Exercise.Name,
				DurationMin: day.Exercise.DurationMin,
				Category:    day.Exercise.Category,
			}
		}
		if _, err = s.scheduleRepo.CreateWorkout(ctx, workout); err != nil {
			return nil, fmt.Errorf("failed to persist day slot for %s: %w", day.Date.Format("2006-01-02"), err)
		}
	}

	if err = s.scheduleRepo.SetScheduleStatus(ctx, schedule.ID, domain.ScheduleActive); err != nil {
		return nil, err
	}
	schedule.Status = domain.ScheduleActive

	workouts, err := s.scheduleRepo.GetWorkoutsBySchedule(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}
	return &WeekSchedule{Schedule: *schedule, Workouts: workouts}, nil
}

// replaceSchedule returns a clean schedule row for the week: an existing one
// with its slots wiped (explicit regeneration), or a fresh draft.
func (s *scheduleService) replaceSchedule(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WorkoutSchedule, error) {
	existing, err := s.scheduleRepo.GetScheduleByUserAndWeek(ctx, userID, weekStart)
	if err == nil {
		if err = s.scheduleRepo.DeleteWorkoutsBySchedule(ctx, existing.ID); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	schedule := &domain.WorkoutSchedule{
		UserID:    userID,
		WeekStart: weekStart,
		Status:    domain.ScheduleDraft,
	}
	scheduleID, err := s.scheduleRepo.CreateSchedule(ctx, schedule)
	if err != nil {
		return nil, err
	}
	schedule.ID = scheduleID
	return schedule, nil
}

// PreviewWeek runs the generation walk without touching the store.
func (s *scheduleService) PreviewWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (scheduling.WeekPreview, error) {
	weekStart = scheduling.WeekStart(weekStart.UTC())

	user, catalog, err := s.safeCatalogWithUser(ctx, userID)
	if err != nil {
		return scheduling.WeekPreview{}, err
	}
	if len(catalog) == 0 {
		// An empty preview, unlike generation, is not an error: the UI shows
		// "no schedule possible" without a failure path.
		return scheduling.WeekPreview{}, nil
	}

	approved, err := s.asserter.AssertAllSafe(ctx, catalog, user, "weekly schedule preview")
	if err != nil {
		return scheduling.WeekPreview{}, err
	}
	checked := make([]domain.Exercise, 0, len(approved))
	for _, a := range approved {
		checked = append(checked, a.Exercise())
	}

	return s.generator.PreviewWeek(weekStart, checked), nil
}

// GetWeek loads the persisted schedule for a week.
func (s *scheduleService) GetWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*WeekSchedule, error) {
	weekStart = scheduling.WeekStart(weekStart.UTC())

	schedule, err := s.scheduleRepo.GetScheduleByUserAndWeek(ctx, userID, weekStart)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	workouts, err := s.scheduleRepo.GetWorkoutsBySchedule(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}
	return &WeekSchedule{Schedule: *schedule, Workouts: workouts}, nil
}

// ValidateWeek resolves the proposed exercises and runs the offline check.
func (s *scheduleService) ValidateWeek(ctx context.Context, userID primitive.ObjectID, exerciseIDs []primitive.ObjectID) (scheduling.ValidationResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return scheduling.ValidationResult{}, ErrUserNotFound
		}
		return scheduling.ValidationResult{}, err
	}

	week := make([]*domain.Exercise, 0, len(exerciseIDs))
	for _, id := range exerciseIDs {
		if id.IsZero() {
			week = append(week, nil)
			continue
		}
		exercise, err := s.exerciseRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return scheduling.ValidationResult{}, ErrExerciseNotFound
			}
			return scheduling.ValidationResult{}, err
		}
		week = append(week, exercise)
	}

	return scheduling.ValidateSchedule(week, user), nil
}

// RegenerateDay swaps one day's assignment for a fresh pick, excluding the
// current exercise so the user actually gets something different.
func (s *scheduleService) RegenerateDay(ctx context.Context, userID, workoutID primitive.ObjectID, revision int64) (*domain.ScheduledWorkout, error) {
	workout, err := s.scheduleRepo.GetWorkoutByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	schedule, err := s.scheduleRepo.GetScheduleByID(ctx, workout.ScheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.UserID != userID {
		return nil, ErrWorkoutNotFound
	}

	user, catalog, err := s.safeCatalogWithUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, ErrNoSafeExercises
	}

	previousCategory, err := s.previousDayCategory(ctx, workout)
	if err != nil {
		return nil, err
	}

	var exclude []primitive.ObjectID
	if workout.Exercise != nil {
		exclude = append(exclude, workout.Exercise.ExerciseID)
	}

	suggestion := s.generator.RegenerateDay(catalog, exclude, previousCategory, workout.Date)
	if suggestion.IsRest() {
		updated, err := s.scheduleRepo.ReplaceWorkoutAssignment(ctx, workoutID, revision, nil, suggestion.RestReason, false)
		return updated, s.mapWorkoutErr(err)
	}

	approved, err := s.asserter.AssertSafe(ctx, *suggestion.Exercise, user, "day regeneration")
	if err != nil {
		return nil, err
	}
	if approved == nil {
		// Permissive mode rejected the pick; with the catalog already
		// double-filtered this means upstream data is wrong.
		return nil, ErrNoSafeExercises
	}

	picked := approved.Exercise()
	snapshot := &domain.ExerciseSnapshot{
		ExerciseID:  picked.ID,
		Name:        picked.Name,
		DurationMin: picked.DurationMin,
		Category:    picked.Category,
	}
	updated, err := s.scheduleRepo.ReplaceWorkoutAssignment(ctx, workoutID, revision, snapshot, "", suggestion.VarietyRelaxed)
	return updated, s.mapWorkoutErr(err)
}

// previousDayCategory finds the category assigned the day before, if any.
// Rest days and week boundaries yield no category, matching the generator's
// carried-state rules.
func (s *scheduleService) previousDayCategory(ctx context.Context, workout *domain.ScheduledWorkout) (domain.Category, error) {
	siblings, err := s.scheduleRepo.GetWorkoutsBySchedule(ctx, workout.ScheduleID)
	if err != nil {
		return "", err
	}

	target := workout.Date.AddDate(0, 0, -1)
	for _, sibling := range siblings {
		if sibling.Date.Year() == target.Year() && sibling.Date.YearDay() == target.YearDay() {
			if sibling.Exercise != nil {
				return sibling.Exercise.Category, nil
			}
			return "", nil
		}
	}
	return "", nil
}

// CompleteWorkout marks a day slot completed.
func (s *scheduleService) CompleteWorkout(ctx context.Context, workoutID primitive.ObjectID, revision int64, note string) (*domain.ScheduledWorkout, error) {
	now := s.now().UTC()
	updated, err := s.scheduleRepo.UpdateWorkoutStatus(ctx, workoutID, revision, repository.WorkoutStatusUpdate{
		Status:         domain.WorkoutCompleted,
		CompletedAt:    &now,
		CompletionNote: note,
	})
	return updated, s.mapWorkoutErr(err)
}

// SkipWorkout marks a day slot skipped.
func (s *scheduleService) SkipWorkout(ctx context.Context, workoutID primitive.ObjectID, revision int64, reason string) (*domain.ScheduledWorkout, error) {
	updated, err := s.scheduleRepo.UpdateWorkoutStatus(ctx, workoutID, revision, repository.WorkoutStatusUpdate{
		Status:     domain.WorkoutSkipped,
		SkipReason: reason,
	})
	return updated, s.mapWorkoutErr(err)
}

func (s *scheduleService) AuditTrail(ctx context.Context, userID primitive.ObjectID) ([]domain.AuditRecord, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.auditRepo.ListByUser(ctx, userID)
}

func (s *scheduleService) mapWorkoutErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStaleRevision):
		return ErrWorkoutConflict
	case errors.Is(err, repository.ErrNotFound):
		return ErrWorkoutNotFound
	default:
		return err
	}
}
