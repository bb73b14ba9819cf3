package models

import "time"

// Reliability is the investigator's assessment of a witness
type Reliability string

// Witness reliability ratings
const (
	ReliabilityHigh    Reliability = "high"
	ReliabilityMedium  Reliability = "medium"
	ReliabilityLow     Reliability = "low"
	ReliabilityUnknown Reliability = "unknown"
)

// Valid reports whether r is a known reliability rating
func (r Reliability) Valid() bool {
	switch r {
	case ReliabilityHigh, ReliabilityMedium, ReliabilityLow, ReliabilityUnknown:
		return true
	}
	return false
}

// Witness holds the structure for the witnesses collection
type Witness struct {
	ID                string      `json:"_id" bson:"_id"`
	AccidentID        string      `json:"accidentID" bson:"accidentID" validate:"required"`
	Name              string      `json:"name" bson:"name" validate:"required,max=255"`
	Phone             string      `json:"phone,omitempty" bson:"phone,omitempty"`
	Email             string      `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Statement         string      `json:"statement" bson:"statement" validate:"required"`
	Reliability       Reliability `json:"reliability" bson:"reliability" validate:"enum"`
	Age               *int        `json:"age,omitempty" bson:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	DistanceFromScene *float64    `json:"distanceFromScene,omitempty" bson:"distanceFromScene,omitempty" validate:"omitempty,gte=0"`
	Recordings        []string    `json:"recordings" bson:"recordings"`
	Photos            []string    `json:"photos" bson:"photos"`
	InterviewedAt     *time.Time  `json:"interviewedAt,omitempty" bson:"interviewedAt,omitempty"`
	CreatedAt         time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt" bson:"updatedAt"`
	Version           int32       `json:"__v" bson:"__v"`
}
