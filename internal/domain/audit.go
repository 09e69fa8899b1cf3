package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditDecision records the outcome of a safety check.
type AuditDecision string

const (
	AuditApproved AuditDecision = "APPROVED"
	AuditRejected AuditDecision = "REJECTED"
)

// AuditRecord is one append-only entry in the exercise-assignment audit
// trail. Records are never updated or deleted by the engine; emission order
// per user is preserved for debuggability.
//
// RecordID is a correlation identifier assigned at emission time so a record
// can be referenced in logs before it reaches the store.
type AuditRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecordID  string             `bson:"recordId" json:"recordId"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	UserName        string             `bson:"userName" json:"userName"`
	UserConstraints []string           `bson:"userConstraints" json:"userConstraints"`

	ExerciseID                primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	ExerciseName              string             `bson:"exerciseName" json:"exerciseName"`
	ExerciseContraindications []string           `bson:"exerciseContraindications,omitempty" json:"exerciseContraindications,omitempty"`

	Decision  AuditDecision `bson:"decision" json:"decision"`
	Conflicts []string      `bson:"conflicts,omitempty" json:"conflicts,omitempty"`
	Context   string        `bson:"context" json:"context"` // e.g. "weekly schedule generation"
}
