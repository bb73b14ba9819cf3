package models

import (
	"math"
	"time"
)

// DamageSeverity grades the damage a vehicle took
type DamageSeverity string

// Damage severities
const (
	DamageNone     DamageSeverity = "none"
	DamageMinor    DamageSeverity = "minor"
	DamageModerate DamageSeverity = "moderate"
	DamageSevere   DamageSeverity = "severe"
	DamageTotaled  DamageSeverity = "totaled"
)

// Valid reports whether d is a known damage severity
func (d DamageSeverity) Valid() bool {
	switch d {
	case DamageNone, DamageMinor, DamageModerate, DamageSevere, DamageTotaled:
		return true
	}
	return false
}

// Position is a point on the scene diagram with the vehicle heading in degrees
type Position struct {
	X       float64 `json:"x" bson:"x"`
	Y       float64 `json:"y" bson:"y"`
	Heading float64 `json:"heading" bson:"heading"`
}

// Vehicle holds the structure for the vehicles collection
type Vehicle struct {
	ID               string         `json:"_id" bson:"_id"`
	AccidentID       string         `json:"accidentID" bson:"accidentID" validate:"required"`
	VehicleNumber    int            `json:"vehicleNumber" bson:"vehicleNumber" validate:"gte=1"`
	Make             string         `json:"make" bson:"make" validate:"required,max=100"`
	Model            string         `json:"model" bson:"model" validate:"required,max=100"`
	Year             int            `json:"year" bson:"year"`
	Color            string         `json:"color,omitempty" bson:"color,omitempty"`
	LicensePlate     string         `json:"licensePlate,omitempty" bson:"licensePlate,omitempty" validate:"max=20"`
	VIN              string         `json:"vin,omitempty" bson:"vin,omitempty" validate:"omitempty,len=17"`
	DriverName       string         `json:"driverName" bson:"driverName" validate:"required,max=255"`
	DriverLicense    string         `json:"driverLicense,omitempty" bson:"driverLicense,omitempty"`
	Speed            float64        `json:"speed" bson:"speed" validate:"gte=0,lte=300"`
	Occupants        int            `json:"occupants" bson:"occupants" validate:"gte=0"`
	InjuredOccupants int            `json:"injuredOccupants" bson:"injuredOccupants" validate:"gte=0"`
	DamageSeverity   DamageSeverity `json:"damageSeverity" bson:"damageSeverity" validate:"enum"`
	InitialPosition  *Position      `json:"initialPosition,omitempty" bson:"initialPosition,omitempty"`
	FinalPosition    *Position      `json:"finalPosition,omitempty" bson:"finalPosition,omitempty"`
	CreatedAt        time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt" bson:"updatedAt"`
	Version          int32          `json:"__v" bson:"__v"`
}

// Displacement is the straight-line distance between the initial and final
// positions, or 0 when either is unknown.
func (v Vehicle) Displacement() float64 {
	if v.InitialPosition == nil || v.FinalPosition == nil {
		return 0
	}
	return math.Hypot(v.FinalPosition.X-v.InitialPosition.X, v.FinalPosition.Y-v.InitialPosition.Y)
}

// HeadingChange is the smallest angle in degrees between the initial and final
// headings, in [0, 180].
func (v Vehicle) HeadingChange() float64 {
	if v.InitialPosition == nil || v.FinalPosition == nil {
		return 0
	}
	d := math.Mod(math.Abs(v.FinalPosition.Heading-v.InitialPosition.Heading), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
