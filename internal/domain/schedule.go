package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleStatus type for the weekly schedule lifecycle.
type ScheduleStatus string

const (
	ScheduleDraft    ScheduleStatus = "draft"
	ScheduleActive   ScheduleStatus = "active"
	ScheduleArchived ScheduleStatus = "archived"
)

// WorkoutStatus type for a single day slot.
type WorkoutStatus string

const (
	WorkoutPending   WorkoutStatus = "pending"
	WorkoutCompleted WorkoutStatus = "completed"
	WorkoutSkipped   WorkoutStatus = "skipped"
)

// WorkoutSchedule represents one user's plan for one calendar week.
// WeekStart is always a Monday; the schedule owns exactly seven day slots.
type WorkoutSchedule struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	WeekStart time.Time          `bson:"weekStart" json:"weekStart"`
	Status    ScheduleStatus     `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseSnapshot captures the assigned exercise at assignment time.
// Later edits to the exercise library cannot silently alter a day already
// scheduled, which is why a scheduled workout embeds this instead of a live
// reference.
type ExerciseSnapshot struct {
	ExerciseID  primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Name        string             `bson:"name" json:"name"`
	DurationMin int                `bson:"durationMin" json:"durationMin"`
	Category    Category           `bson:"category" json:"category"`
}

// ScheduledWorkout is one day slot of a weekly schedule: either a rest day
// marker or an exercise snapshot.
//
// Revision implements optimistic concurrency on status updates: two household
// members marking the same slot complete race on it, and the stale write is
// rejected instead of silently winning.
type ScheduledWorkout struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ScheduleID primitive.ObjectID `bson:"scheduleId" json:"scheduleId"`
	Date       time.Time          `bson:"date" json:"date"`
	Status     WorkoutStatus      `bson:"status" json:"status"`

	RestDay    bool              `bson:"restDay" json:"restDay"`
	RestReason string            `bson:"restReason,omitempty" json:"restReason,omitempty"`
	Exercise   *ExerciseSnapshot `bson:"exercise,omitempty" json:"exercise,omitempty"`

	// VarietyRelaxed marks that the generator had to repeat the previous
	// day's category because no other category fit the day's duration limit.
	VarietyRelaxed bool `bson:"varietyRelaxed,omitempty" json:"varietyRelaxed,omitempty"`

	CompletedAt    *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CompletionNote string     `bson:"completionNote,omitempty" json:"completionNote,omitempty"`
	SkipReason     string     `bson:"skipReason,omitempty" json:"skipReason,omitempty"`

	Revision  int64     `bson:"revision" json:"revision"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
