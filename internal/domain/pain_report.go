package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity windows for pain reports. A report excludes exercises for three
// days after it is made; repeated reports within seven days trigger the
// emergency-stop recommendation.
const (
	PainActiveWindowDays    = 3
	PainEmergencyWindowDays = 7
	PainEmergencyThreshold  = 3
)

// PainReport records a user reporting pain in a body part.
//
// While a report is active (unresolved and within the 3-day window) it adds
// derived contraindications on top of the user's declared constraints. It
// never mutates the stored user profile.
type PainReport struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	BodyPart     string             `bson:"bodyPart" json:"bodyPart"` // e.g. "Knee", "Lower back", "Abdomen"
	ReportedDate time.Time          `bson:"reportedDate" json:"reportedDate"`
	ResolvedDate *time.Time         `bson:"resolvedDate,omitempty" json:"resolvedDate,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// ActiveAt reports whether the pain report still excludes exercises at the
// given time: not resolved and reported within the last 3 days.
func (p *PainReport) ActiveAt(now time.Time) bool {
	if p.ResolvedDate != nil {
		return false
	}
	threshold := now.AddDate(0, 0, -PainActiveWindowDays)
	return !p.ReportedDate.Before(threshold)
}
