package safety

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mode controls how the asserter reacts to a safety violation.
// It is an explicit injected value, not an environment read, so the behavior
// is visible and testable at every call site.
type Mode string

const (
	// ModeStrict fails hard on any violation. Meant for development and test
	// configurations where a contraindicated exercise reaching the asserter
	// should crash the pipeline, never be swallowed.
	ModeStrict Mode = "strict"
	// ModePermissive reports the violation to the monitoring reporter and
	// appends a REJECTED audit record instead of failing. Production setting.
	ModePermissive Mode = "permissive"
)

// ParseMode maps a config string to a Mode, defaulting to strict for any
// unrecognized value. Failing closed is the safer misconfiguration outcome.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModePermissive {
		return ModePermissive
	}
	return ModeStrict
}

// SafetyViolation is the error raised when a contraindicated exercise reaches
// the asserter. It carries everything needed to debug how the exercise got
// past Layers 1-2.
type SafetyViolation struct {
	ExerciseID      primitive.ObjectID
	ExerciseName    string
	UserID          primitive.ObjectID
	UserName        string
	UserConstraints []string
	Conflicts       []string
	Context         string
}

func (v *SafetyViolation) Error() string {
	return fmt.Sprintf(
		"SAFETY VIOLATION: exercise %q (ID: %s) has contraindications [%s] conflicting with user %q (ID: %s) constraints [%s]. Context: %s",
		v.ExerciseName, v.ExerciseID.Hex(),
		strings.Join(v.Conflicts, ", "),
		v.UserName, v.UserID.Hex(),
		strings.Join(v.UserConstraints, ", "),
		v.Context,
	)
}

// AuditSink receives audit records. Implementations must treat records as
// append-only. Record failures are logged by the asserter but never fail the
// scheduling operation.
type AuditSink interface {
	Record(ctx context.Context, record domain.AuditRecord) error
}

// ViolationReporter receives violations in permissive mode, standing in for
// an external monitoring service.
type ViolationReporter interface {
	ReportViolation(ctx context.Context, violation *SafetyViolation)
}

// LogReporter reports violations to the process log. Default reporter when no
// monitoring integration is wired.
type LogReporter struct{}

func (LogReporter) ReportViolation(_ context.Context, violation *SafetyViolation) {
	log.Printf("ERROR: %v", violation)
}

// Approved is an exercise that passed the safety check for a specific user.
// It cannot be constructed outside this package: holding one proves the
// asserter's success path ran, so an unvalidated exercise can never be passed
// where a validated one is required.
type Approved struct {
	exercise domain.Exercise
	userID   primitive.ObjectID
}

// Exercise returns the validated exercise.
func (a *Approved) Exercise() domain.Exercise { return a.exercise }

// UserID returns the user the exercise was validated for.
func (a *Approved) UserID() primitive.ObjectID { return a.userID }

// Asserter re-validates exercises independently of FilterExercises: defense
// in depth means it must not trust the filter's output.
type Asserter struct {
	mode     Mode
	audit    AuditSink
	reporter ViolationReporter
	now      func() time.Time
}

// NewAsserter creates an Asserter. A nil reporter falls back to LogReporter;
// the audit sink is required.
func NewAsserter(mode Mode, audit AuditSink, reporter ViolationReporter) *Asserter {
	if audit == nil {
		panic("safety: audit sink is required")
	}
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &Asserter{
		mode:     mode,
		audit:    audit,
		reporter: reporter,
		now:      time.Now,
	}
}

// AssertSafe recomputes the contraindication overlap for one exercise.
//
// On success for a user with at least one declared constraint it appends an
// APPROVED audit record and returns the branded exercise. Constraint-free
// users produce no audit noise. On conflict, strict mode returns a
// *SafetyViolation error; permissive mode reports it, appends a REJECTED
// record and returns (nil, nil) so the caller drops the exercise without the
// operation failing.
func (a *Asserter) AssertSafe(ctx context.Context, exercise domain.Exercise, user *domain.User, checkContext string) (*Approved, error) {
	conflicts := CheckConflicts(exercise, user.HealthConstraints)

	if len(conflicts) > 0 {
		violation := &SafetyViolation{
			ExerciseID:      exercise.ID,
			ExerciseName:    exercise.Name,
			UserID:          user.ID,
			UserName:        user.Name,
			UserConstraints: user.HealthConstraints,
			Conflicts:       conflicts,
			Context:         checkContext,
		}

		if a.mode == ModeStrict {
			return nil, violation
		}

		a.reporter.ReportViolation(ctx, violation)
		a.record(ctx, exercise, user, domain.AuditRejected, conflicts, checkContext)
		return nil, nil
	}

	if user.HasConstraints() {
		a.record(ctx, exercise, user, domain.AuditApproved, nil, checkContext)
	}

	return &Approved{exercise: exercise, userID: user.ID}, nil
}

// AssertAllSafe applies AssertSafe to every exercise in order. In strict mode
// the first violation aborts; in permissive mode violating exercises are
// reported, audited and omitted from the result.
func (a *Asserter) AssertAllSafe(ctx context.Context, exercises []domain.Exercise, user *domain.User, checkContext string) ([]*Approved, error) {
	approved := make([]*Approved, 0, len(exercises))
	for _, exercise := range exercises {
		ok, err := a.AssertSafe(ctx, exercise, user, checkContext)
		if err != nil {
			return nil, err
		}
		if ok != nil {
			approved = append(approved, ok)
		}
	}
	return approved, nil
}

// record appends to the audit trail. Audit write failures must not block or
// fail the scheduling operation, so they are logged and dropped.
func (a *Asserter) record(ctx context.Context, exercise domain.Exercise, user *domain.User, decision domain.AuditDecision, conflicts []string, checkContext string) {
	entry := domain.AuditRecord{
		RecordID:                  uuid.NewString(),
		Timestamp:                 a.now().UTC(),
		UserID:                    user.ID,
		UserName:                  user.Name,
		UserConstraints:           user.HealthConstraints,
		ExerciseID:                exercise.ID,
		ExerciseName:              exercise.Name,
		ExerciseContraindications: exercise.Contraindications,
		Decision:                  decision,
		Conflicts:                 conflicts,
		Context:                   checkContext,
	}
	if err := a.audit.Record(ctx, entry); err != nil {
		log.Printf("WARN: failed to append audit record %s: %v", entry.RecordID, err)
	}
}
