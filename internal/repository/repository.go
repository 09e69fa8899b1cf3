package repository

import (
	"alcyxob/fitness-scheduler/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound      = RepositoryError("not found")
	ErrStaleRevision = RepositoryError("stale revision: workout was modified concurrently")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with household member data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateHealthConstraints(ctx context.Context, id primitive.ObjectID, constraints []string) error
}

// ExerciseRepository defines the interface for interacting with the exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetAll(ctx context.Context) ([]domain.Exercise, error)
	// GetSafeForConstraints is the Layer-1 query-time pre-filter: it excludes
	// any exercise whose contraindications overlap the given expanded
	// constraint set. Callers must still re-validate the result (Layer 2);
	// this is an optimization, not sufficient on its own.
	GetSafeForConstraints(ctx context.Context, expandedConstraints []string) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PainReportRepository defines the interface for interacting with pain history.
type PainReportRepository interface {
	Create(ctx context.Context, report *domain.PainReport) (primitive.ObjectID, error)
	Resolve(ctx context.Context, id primitive.ObjectID, resolvedDate time.Time) error
	// GetActiveSince returns unresolved reports made on or after since,
	// newest first.
	GetActiveSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.PainReport, error)
	// GetAllSince returns every report made on or after since, resolved or
	// not. Used for the emergency-stop count.
	GetAllSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.PainReport, error)
}

// WorkoutStatusUpdate carries the mutable fields of a completion/skip action.
type WorkoutStatusUpdate struct {
	Status         domain.WorkoutStatus
	CompletedAt    *time.Time
	CompletionNote string
	SkipReason     string
}

// ScheduleRepository defines the interface for interacting with weekly
// schedules and their day slots.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule *domain.WorkoutSchedule) (primitive.ObjectID, error)
	GetScheduleByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSchedule, error)
	GetScheduleByUserAndWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WorkoutSchedule, error)
	SetScheduleStatus(ctx context.Context, id primitive.ObjectID, status domain.ScheduleStatus) error

	CreateWorkout(ctx context.Context, workout *domain.ScheduledWorkout) (primitive.ObjectID, error)
	GetWorkoutByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduledWorkout, error)
	GetWorkoutsBySchedule(ctx context.Context, scheduleID primitive.ObjectID) ([]domain.ScheduledWorkout, error)
	// UpdateWorkoutStatus applies a completion/skip, guarded by the expected
	// revision. A revision of 0 skips the check (last-write-wins); any other
	// value must match the stored revision or ErrStaleRevision is returned.
	UpdateWorkoutStatus(ctx context.Context, id primitive.ObjectID, expectedRevision int64, update WorkoutStatusUpdate) (*domain.ScheduledWorkout, error)
	// ReplaceWorkoutAssignment swaps the day's exercise snapshot (or turns
	// the day into a rest day when snapshot is nil), guarded by the same
	// revision semantics as UpdateWorkoutStatus.
	ReplaceWorkoutAssignment(ctx context.Context, id primitive.ObjectID, expectedRevision int64, snapshot *domain.ExerciseSnapshot, restReason string, varietyRelaxed bool) (*domain.ScheduledWorkout, error)
	// DeleteWorkoutsBySchedule clears all day slots for explicit regeneration.
	DeleteWorkoutsBySchedule(ctx context.Context, scheduleID primitive.ObjectID) error
}

// AuditRepository defines the interface for the exercise-assignment audit
// trail. Records are append-only; no update or delete methods exist.
type AuditRepository interface {
	Append(ctx context.Context, record domain.AuditRecord) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.AuditRecord, error)
}
