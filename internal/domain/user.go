package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles within a household.
type Role string

const (
	RoleAdmin  Role = "admin"  // Manages the exercise library and household members
	RoleMember Role = "member" // Gets schedules generated for them
)

// User represents a household member.
//
// HealthConstraints are the user's declared limitation labels (e.g.
// "diastasis-recti"). They are owned by the user; the scheduling engine only
// ever reads them. Pain-derived constraints are layered on top at scheduling
// time and never written back here.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`

	HealthConstraints   []string `bson:"healthConstraints,omitempty" json:"healthConstraints,omitempty"`
	ActivityPreferences []string `bson:"activityPreferences,omitempty" json:"activityPreferences,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasConstraints reports whether the user has any declared health constraints.
// Constraint-free users skip audit logging entirely.
func (u *User) HasConstraints() bool {
	return len(u.HealthConstraints) > 0
}
