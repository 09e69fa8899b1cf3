package service_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/repository"
	"alcyxob/fitness-scheduler/internal/safety"
	"alcyxob/fitness-scheduler/internal/scheduling"
	"alcyxob/fitness-scheduler/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	user.ID = id
	r.users[id] = *user
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := user
	return &u, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, nil
}

func (r *fakeUserRepo) UpdateHealthConstraints(_ context.Context, id primitive.ObjectID, constraints []string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.HealthConstraints = constraints
	r.users[id] = user
	return nil
}

type fakeExerciseRepo struct {
	exercises []domain.Exercise
}

func (r *fakeExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	exercise.ID = primitive.NewObjectID()
	r.exercises = append(r.exercises, *exercise)
	return exercise.ID, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	for _, exercise := range r.exercises {
		if exercise.ID == id {
			e := exercise
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeExerciseRepo) GetAll(_ context.Context) ([]domain.Exercise, error) {
	return append([]domain.Exercise{}, r.exercises...), nil
}

// GetSafeForConstraints mirrors the store query: an exercise survives only if
// none of its raw contraindication labels appear in the expanded set.
func (r *fakeExerciseRepo) GetSafeForConstraints(_ context.Context, expandedConstraints []string) ([]domain.Exercise, error) {
	excluded := make(map[string]struct{}, len(expandedConstraints))
	for _, label := range expandedConstraints {
		excluded[label] = struct{}{}
	}

	var safe []domain.Exercise
	for _, exercise := range r.exercises {
		conflict := false
		for _, label := range exercise.Contraindications {
			if _, ok := excluded[label]; ok {
				conflict = true
				break
			}
		}
		if !conflict {
			safe = append(safe, exercise)
		}
	}
	return safe, nil
}

func (r *fakeExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	for i := range r.exercises {
		if r.exercises[i].ID == exercise.ID {
			r.exercises[i] = *exercise
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeExerciseRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range r.exercises {
		if r.exercises[i].ID == id {
			r.exercises = append(r.exercises[:i], r.exercises[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakePainRepo struct {
	reports []domain.PainReport
}

func (r *fakePainRepo) Create(_ context.Context, report *domain.PainReport) (primitive.ObjectID, error) {
	report.ID = primitive.NewObjectID()
	r.reports = append(r.reports, *report)
	return report.ID, nil
}

func (r *fakePainRepo) Resolve(_ context.Context, id primitive.ObjectID, resolvedDate time.Time) error {
	for i := range r.reports {
		if r.reports[i].ID == id {
			resolved := resolvedDate
			r.reports[i].ResolvedDate = &resolved
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakePainRepo) GetActiveSince(_ context.Context, userID primitive.ObjectID, since time.Time) ([]domain.PainReport, error) {
	var reports []domain.PainReport
	for _, report := range r.reports {
		if report.UserID == userID && report.ResolvedDate == nil && !report.ReportedDate.Before(since) {
			reports = append(reports, report)
		}
	}
	return reports, nil
}

func (r *fakePainRepo) GetAllSince(_ context.Context, userID primitive.ObjectID, since time.Time) ([]domain.PainReport, error) {
	var reports []domain.PainReport
	for _, report := range r.reports {
		if report.UserID == userID && !report.ReportedDate.Before(since) {
			reports = append(reports, report)
		}
	}
	return reports, nil
}

type fakeScheduleRepo struct {
	schedules map[primitive.ObjectID]domain.WorkoutSchedule
	workouts  map[primitive.ObjectID]domain.ScheduledWorkout
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		schedules: make(map[primitive.ObjectID]domain.WorkoutSchedule),
		workouts:  make(map[primitive.ObjectID]domain.ScheduledWorkout),
	}
}

func (r *fakeScheduleRepo) CreateSchedule(_ context.Context, schedule *domain.WorkoutSchedule) (primitive.ObjectID, error) {
	schedule.ID = primitive.NewObjectID()
	r.schedules[schedule.ID] = *schedule
	return schedule.ID, nil
}

func (r *fakeScheduleRepo) GetScheduleByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSchedule, error) {
	schedule, ok := r.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s := schedule
	return &s, nil
}

func (r *fakeScheduleRepo) GetScheduleByUserAndWeek(_ context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WorkoutSchedule, error) {
	for _, schedule := range r.schedules {
		if schedule.UserID == userID && schedule.WeekStart.Equal(weekStart) {
			s := schedule
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeScheduleRepo) SetScheduleStatus(_ context.Context, id primitive.ObjectID, status domain.ScheduleStatus) error {
	schedule, ok := r.schedules[id]
	if !ok {
		return repository.ErrNotFound
	}
	schedule.Status = status
	r.schedules[id] = schedule
	return nil
}

func (r *fakeScheduleRepo) CreateWorkout(_ context.Context, workout *domain.ScheduledWorkout) (primitive.ObjectID, error) {
	workout.ID = primitive.NewObjectID()
	workout.Revision = 1
	r.workouts[workout.ID] = *workout
	return workout.ID, nil
}

func (r *fakeScheduleRepo) GetWorkoutByID(_ context.Context, id primitive.ObjectID) (*domain.ScheduledWorkout, error) {
	workout, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w := workout
	return &w, nil
}

func (r *fakeScheduleRepo) GetWorkoutsBySchedule(_ context.Context, scheduleID primitive.ObjectID) ([]domain.ScheduledWorkout, error) {
	var workouts []domain.ScheduledWorkout
	for _, workout := range r.workouts {
		if workout.ScheduleID == scheduleID {
			workouts = append(workouts, workout)
		}
	}
	return workouts, nil
}

func (r *fakeScheduleRepo) UpdateWorkoutStatus(_ context.Context, id primitive.ObjectID, expectedRevision int64, update repository.WorkoutStatusUpdate) (*domain.ScheduledWorkout, error) {
	workout, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if expectedRevision > 0 && workout.Revision != expectedRevision {
		return nil, repository.ErrStaleRevision
	}
	workout.Status = update.Status
	workout.CompletedAt = update.CompletedAt
	workout.CompletionNote = update.CompletionNote
	workout.SkipReason = update.SkipReason
	workout.Revision++
	r.workouts[id] = workout
	w := workout
	return &w, nil
}

func (r *fakeScheduleRepo) ReplaceWorkoutAssignment(_ context.Context, id primitive.ObjectID, expectedRevision int64, snapshot *domain.ExerciseSnapshot, restReason string, varietyRelaxed bool) (*domain.ScheduledWorkout, error) {
	workout, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if expectedRevision > 0 && workout.Revision != expectedRevision {
		return nil, repository.ErrStaleRevision
	}
	workout.Exercise = snapshot
	workout.RestDay = snapshot == nil
	workout.RestReason = restReason
	workout.VarietyRelaxed = varietyRelaxed
	workout.Revision++
	r.workouts[id] = workout
	w := workout
	return &w, nil
}

func (r *fakeScheduleRepo) DeleteWorkoutsBySchedule(_ context.Context, scheduleID primitive.ObjectID) error {
	for id, workout := range r.workouts {
		if workout.ScheduleID == scheduleID {
			delete(r.workouts, id)
		}
	}
	return nil
}

type fakeAuditRepo struct {
	records []domain.AuditRecord
}

func (r *fakeAuditRepo) Append(_ context.Context, record domain.AuditRecord) error {
	r.records = append(r.records, record)
	return nil
}

func (r *fakeAuditRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.AuditRecord, error) {
	var records []domain.AuditRecord
	for _, record := range r.records {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	return records, nil
}

// --- Test fixture ---

type fixture struct {
	users     *fakeUserRepo
	exercises *fakeExerciseRepo
	pain      *fakePainRepo
	schedules *fakeScheduleRepo
	audit     *fakeAuditRepo
	svc       service.ScheduleService
}

func newFixture(t *testing.T, users ...domain.User) *fixture {
	t.Helper()

	f := &fixture{
		users:     newFakeUserRepo(users...),
		exercises: &fakeExerciseRepo{},
		pain:      &fakePainRepo{},
		schedules: newFakeScheduleRepo(),
		audit:     &fakeAuditRepo{},
	}
	asserter := safety.NewAsserter(safety.ModeStrict, service.NewRepositoryAuditSink(f.audit), nil)
	generator := scheduling.NewGenerator(rand.New(rand.NewSource(1)))
	f.svc = service.NewScheduleService(f.users, f.exercises, f.pain, f.schedules, f.audit, asserter, generator)
	return f
}

func (f *fixture) addExercise(t *testing.T, name string, category domain.Category, durationMin int, contraindications ...string) domain.Exercise {
	t.Helper()
	exercise := domain.Exercise{
		Name:              name,
		Category:          category,
		DurationMin:       durationMin,
		Contraindications: contraindications,
	}
	if _, err := f.exercises.Create(context.Background(), &exercise); err != nil {
		t.Fatal(err)
	}
	return exercise
}

func member(constraints ...string) domain.User {
	return domain.User{
		ID:                primitive.NewObjectID(),
		Name:              "Sanna",
		Email:             "sanna@example.com",
		Role:              domain.RoleMember,
		HealthConstraints: constraints,
	}
}

var testWeek = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// --- Tests ---

func TestGenerateWeekPersistsSevenSafeDays(t *testing.T) {
	user := member("knee-pain")
	f := newFixture(t, user)
	f.addExercise(t, "Walking", domain.CategoryCardio, 30)
	f.addExercise(t, "Stretching", domain.CategoryFlexibility, 20)
	unsafe := f.addExercise(t, "Deep Squats", domain.CategoryStrength, 20, "knee-stress")

	week, err := f.svc.GenerateWeek(context.Background(), user.ID, testWeek)
	if err != nil {
		t.Fatalf("GenerateWeek: %v", err)
	}

	if week.Schedule.Status != domain.ScheduleActive {
		t.Errorf("schedule status = %q, want active", week.Schedule.Status)
	}
	if !week.Schedule.WeekStart.Equal(testWeek) {
		t.Errorf("week start = %s, want %s", week.Schedule.WeekStart, testWeek)
	}
	if len(week.Workouts) != 7 {
		t.Fatalf("expected 7 day slots, got %d", len(week.Workouts))
	}

	for _, workout := range week.Workouts {
		if workout.Exercise != nil && workout.Exercise.ExerciseID == unsafe.ID {
			t.Errorf("contraindicated exercise %q was scheduled", unsafe.Name)
		}
		if workout.Revision != 1 {
			t.Errorf("new workout revision = %d, want 1", workout.Revision)
		}
	}

	// The constrained user's approvals must be in the audit trail.
	records, err := f.svc.AuditTrail(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 {
		t.Error("expected APPROVED audit records for a constrained user")
	}
	for _, record := range records {
		if record.Decision != domain.AuditApproved {
			t.Errorf("unexpected %s audit record in strict success path", record.Decision)
		}
	}
}

func TestGenerateWeekNoSafeExercises(t *testing.T) {
	user := member("knee-pain")
	f := newFixture(t, user)
	f.addExercise(t, "Deep Squats", domain.CategoryStrength, 20, "knee-stress")
	f.addExercise(t, "Box Jumps", domain.CategoryCardio, 15, "high-impact")

	_, err := f.svc.GenerateWeek(context.Background(), user.ID, testWeek)
	if !errors.Is(err, service.ErrNoSafeExercises) {
		t.Fatalf("expected ErrNoSafeExercises, got %v", err)
	}

	if len(f.schedules.workouts) != 0 {
		t.Error("nothing may be persisted when generation fails")
	}
}

func TestGenerateWeekReplacesExistingWeek(t *testing.T) {
	user := member()
	f := newFixture(t, user)
	f.addExercise(t, "Walking", domain.CategoryCardio, 30)
	f.addExercise(t, "Stretching", domain.CategoryFlexibility, 20)

	first, err := f.svc.GenerateWeek(context.Background(), user.ID, testWeek)
	if err != nil {
		t.Fatalf("first GenerateWeek: %v", err)
	}
	second, err := f.svc.GenerateWeek(context.Background(), user.ID, testWeek)
	if err != nil {
		t.Fatalf("second GenerateWeek: %v", err)
	}

	if first.Schedule.ID != second.Schedule.ID {
		t.Error("regenerating a week must reuse the schedule row")
	}
	if len(f.schedules.workouts) != 7 {
		t.Errorf("expected 7 slots after regeneration, got %d", len(f.schedules.workouts))
	}
}

func TestGenerateWeekExcludesPainDerivedConstraints(t *testing.T) {
	// No declared constraints; an active knee pain report must still exclude
	// knee-stressing exercises.
	user := member()
	f := newFixture(t, user)
	f.addExercise(t, "Walking", domain.CategoryCardio, 30)
	kneeStress := f.addExercise(t, "Deep Squats", domain.CategoryStrength, 20, "knee-stress")

	report := domain.PainReport{
		UserID:       user.ID,
		BodyPart:     "Knee",
		ReportedDate: time.Now().UTC().AddDate(0, 0, -1),
	}
	if _, err := f.pain.Create(context.Background(), &report); err != nil {
		t.Fatal(err)
	}

	week, err := f.svc.GenerateWeek(context.Background(), user.ID, testWeek)
	if err != nil {
		t.Fatalf("GenerateWeek: %v", err)
	}
	for _, workout := range week.Workouts {
		if workout.Exercise != nil && workout.Exercise.ExerciseID == kneeStress.ID {
			t.Errorf("exercise excluded by active pain report was scheduled")
		}
	}
}

func TestGenerateWeekUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GenerateWeek(context.Background(), primitive.NewObjectID(), testWeek)
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPreviewWeekDoesNotPersist(t *testing.T) {
	user := member()
	f := newFixture(t, user)
	f.addExercise(t, "Walking", domain.CategoryCardio, 30)

	preview, err := f.svc.PreviewWeek(context.Background(), user.ID, testWeek)
	if err != nil {
		t.Fatalf("PreviewWeek: %v", err)
	}
	if len(preview.Days) != 7 {
		t.Errorf("expected 7 preview days, got %d", len(preview.Days))
	}
	if len(f.schedules.schedules) != 0 || len(f.schedules.workouts) != 0 {
		t.Error("preview must not persist anything")
	}
}

func TestPreviewWeekEmptyCatalogIsNotAnError(t *testing.T) {
	user := member()
	f := newFixture(t, user)

	preview, err := f.svc.PreviewWeek(context.Background(), user.ID, testWeek)
	if err != nil {
		t.Fatalf("empty catalog preview must not fail: %v", err)
	}
	if len(preview.Days) != 0 {
		t.Errorf("expected empty preview, got %d days", len(preview.Days))
	}
}

func TestSafeCatalog(t *testing.T) {
	user := member("diastasis-recti")
	f := newFixture(t, user)
	f.addExercise(t, "Walking", domain.CategoryCardio, 30)
	f.addExercise(t, "Crunches", domain.CategoryStrength, 15, "diastasis-risk")

	catalog, err := f.svc.SafeCatalog(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("SafeCatalog: %v", err)
	}
	if len(catalog) != 1 || catalog[0].Name != "Walking" {
		t.Errorf("unexpected safe catalog: %+v", catalog)
	}
}

func TestValidateWeekKeepsWeekdayAlignment(t *testing.T) {
	user := member()
	f := newFixture(t, user)
	hike := f.addExercise(t, "Long Hike", domain.CategoryCardio, 60)

	t.Run("weekend-only week with rest days passes", func(t *testing.T) {
		// Monday through Friday rest, the 60-minute hike on both weekend days.
		ids := []primitive.ObjectID{
			primitive.NilObjectID, primitive.NilObjectID, primitive.NilObjectID,
			primitive.NilObjectID, primitive.NilObjectID, hike.ID, hike.ID,
		}
		result, err := f.svc.ValidateWeek(context.Background(), user.ID, ids)
		if err != nil {
			t.Fatalf("ValidateWeek: %v", err)
		}
		if !result.Valid {
			t.Errorf("weekend-only week must pass, got findings: %v", result.Errors)
		}
	})

	t.Run("the same session on Monday is flagged", func(t *testing.T) {
		result, err := f.svc.ValidateWeek(context.Background(), user.ID, []primitive.ObjectID{hike.ID})
		if err != nil {
			t.Fatalf("ValidateWeek: %v", err)
		}
		if result.Valid {
			t.Fatal("expected a duration finding for Monday")
		}
		if !strings.Contains(result.Errors[0], "Mon") {
			t.Errorf("expected the finding on Mon, got %q", result.Errors[0])
		}
	})
}

func TestCompleteWorkoutRevisionGuard(t *testing.T) {
	user := member()
	f := newFixture(t, user)
	f.addExercise(t, "Walking", domain.CategoryCardio, 30)

	week, err := f.svc.GenerateWeek(context.Background(), user.ID, testWeek)
	if err != nil {
		t.Fatalf("GenerateWeek: %v", err)
	}
	workout := week.Workouts[0]

	t.Run("matching revision succeeds", func(t *testing.T) {
		updated, err := f.svc.CompleteWorkout(context.Background(), workout.ID, workout.Revision, "felt great")
		if err != nil {
			t.Fatalf("CompleteWorkout: %v", err)
		}
		if updated.Status != domain.WorkoutCompleted {
			t.Errorf("status = %q, want completed", updated.Status)
		}
		if updated.CompletedAt == nil || updated.CompletionNote != "felt great" {
			t.Error("completion details missing")
		}
		if updated.Revision != workout.Revision+1 {
			t.Errorf("revision = %d, want %d", updated.Revision, workout.Revision+1)
		}
	})

	t.Run("stale revision is rejected", func(t *testing.T) {
		_, err := f.svc.SkipWorkout(context.Background(), workout.ID, workout.Revision, "tired")
		if !errors.Is(err, service.ErrWorkoutConflict) {
			t.Fatalf("expected ErrWorkoutConflict, got %v", err)
		}
	})

	t.Run("unknown workout", func(t *testing.T) {
		_, err := f.svc.CompleteWorkout(context.Background(), primitive.NewObjectID(), 1, "")
		if !errors.Is(err, service.ErrWorkoutNotFound) {
			t.Fatalf("expected ErrWorkoutNotFound, got %v", err)
		}
	})
}

func TestRegenerateDay(t *testing.T) {
	user := member()
	f := newFixture(t, user)
	walking := f.addExercise(t, "Walking", domain.CategoryCardio, 30)
	f.addExercise(t, "Stretching", domain.CategoryFlexibility, 20)

	week, err := f.svc.GenerateWeek(context.Background(), user.ID, testWeek)
	if err != nil {
		t.Fatalf("GenerateWeek: %v", err)
	}

	var target domain.ScheduledWorkout
	for _, workout := range week.Workouts {
		if workout.Exercise != nil && workout.Exercise.ExerciseID == walking.ID {
			target = workout
			break
		}
	}
	if target.ID.IsZero() {
		t.Skip("seeded generation never picked Walking")
	}

	t.Run("swaps to a different exercise", func(t *testing.T) {
		updated, err := f.svc.RegenerateDay(context.Background(), user.ID, target.ID, target.Revision)
		if err != nil {
			t.Fatalf("RegenerateDay: %v", err)
		}
		if updated.Exercise != nil && updated.Exercise.ExerciseID == walking.ID {
			t.Error("regeneration returned the excluded exercise")
		}
	})

	t.Run("other users cannot touch the slot", func(t *testing.T) {
		_, err := f.svc.RegenerateDay(context.Background(), primitive.NewObjectID(), target.ID, target.Revision)
		if !errors.Is(err, service.ErrWorkoutNotFound) {
			t.Fatalf("expected ErrWorkoutNotFound for foreign user, got %v", err)
		}
	})
}

func TestGetWeek(t *testing.T) {
	user := member()
	f := newFixture(t, user)
	f.addExercise(t, "Walking", domain.CategoryCardio, 30)

	if _, err := f.svc.GetWeek(context.Background(), user.ID, testWeek); !errors.Is(err, service.ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound before generation, got %v", err)
	}

	if _, err := f.svc.GenerateWeek(context.Background(), user.ID, testWeek); err != nil {
		t.Fatalf("GenerateWeek: %v", err)
	}

	// Mid-week timestamps resolve to the same schedule.
	midWeek := testWeek.AddDate(0, 0, 3)
	week, err := f.svc.GetWeek(context.Background(), user.ID, midWeek)
	if err != nil {
		t.Fatalf("GetWeek: %v", err)
	}
	if len(week.Workouts) != 7 {
		t.Errorf("expected 7 slots, got %d", len(week.Workouts))
	}
}
