package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category classifies an exercise.
type Category string

const (
	CategoryCardio      Category = "cardio"
	CategoryStrength    Category = "strength"
	CategoryFlexibility Category = "flexibility"
	CategorySport       Category = "sport"
)

// Intensity levels for an exercise.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
)

// Exercise represents a single exercise definition in the library.
//
// Contraindications are raw labels as entered (e.g. "knee-stress"); they are
// normalized through the safety package before any comparison, never here.
// An empty contraindication list means the exercise is safe for everyone.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    Category           `bson:"category" json:"category"`
	Subcategory string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"` // e.g. "cycling", "core"
	DurationMin int                `bson:"durationMin" json:"durationMin"`
	Intensity   Intensity          `bson:"intensity" json:"intensity"`
	Equipment   []string           `bson:"equipment,omitempty" json:"equipment,omitempty"`

	Contraindications []string `bson:"contraindications,omitempty" json:"contraindications,omitempty"`
	Modifications     string   `bson:"modifications,omitempty" json:"modifications,omitempty"` // Safer variants for constrained users
	SafetyNotes       string   `bson:"safetyNotes,omitempty" json:"safetyNotes,omitempty"`

	VideoObjectKey string `bson:"videoObjectKey,omitempty" json:"-"` // S3 key for the demonstration video, if uploaded

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
