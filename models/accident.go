package models

import "time"

// Weather at the time of the accident
type Weather string

// Weather conditions
const (
	WeatherClear   Weather = "clear"
	WeatherCloudy  Weather = "cloudy"
	WeatherRain    Weather = "rain"
	WeatherSnow    Weather = "snow"
	WeatherFog     Weather = "fog"
	WeatherSleet   Weather = "sleet"
	WeatherWind    Weather = "wind"
	WeatherUnknown Weather = "unknown"
)

// Valid reports whether w is a known weather condition
func (w Weather) Valid() bool {
	switch w {
	case WeatherClear, WeatherCloudy, WeatherRain, WeatherSnow, WeatherFog, WeatherSleet, WeatherWind, WeatherUnknown:
		return true
	}
	return false
}

// RoadCondition describes the road surface
type RoadCondition string

// Road conditions
const (
	RoadDry          RoadCondition = "dry"
	RoadWet          RoadCondition = "wet"
	RoadIcy          RoadCondition = "icy"
	RoadSnowy        RoadCondition = "snowy"
	RoadMuddy        RoadCondition = "muddy"
	RoadConstruction RoadCondition = "construction"
	RoadUnknown      RoadCondition = "unknown"
)

// Valid reports whether r is a known road condition
func (r RoadCondition) Valid() bool {
	switch r {
	case RoadDry, RoadWet, RoadIcy, RoadSnowy, RoadMuddy, RoadConstruction, RoadUnknown:
		return true
	}
	return false
}

// LightCondition describes visibility at the scene
type LightCondition string

// Light conditions
const (
	LightDaylight      LightCondition = "daylight"
	LightDawn          LightCondition = "dawn"
	LightDusk          LightCondition = "dusk"
	LightDarkLighted   LightCondition = "dark_lighted"
	LightDarkUnlighted LightCondition = "dark_unlighted"
	LightUnknown       LightCondition = "unknown"
)

// Valid reports whether l is a known light condition
func (l LightCondition) Valid() bool {
	switch l {
	case LightDaylight, LightDawn, LightDusk, LightDarkLighted, LightDarkUnlighted, LightUnknown:
		return true
	}
	return false
}

// Severity is derived from the casualty counts of an accident
type Severity string

// Accident severities
const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityFatal    Severity = "fatal"
)

// Coordinates is a WGS84 point
type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"gte=-180,lte=180"`
}

// Accident holds the structure for the accidents collection. Every accident
// belongs to exactly one case.
type Accident struct {
	ID                 string         `json:"_id" bson:"_id"`
	CaseID             string         `json:"caseID" bson:"caseID" validate:"required"`
	DateTime           time.Time      `json:"dateTime" bson:"dateTime"`
	Location           string         `json:"location" bson:"location" validate:"required,max=500"`
	Coordinates        *Coordinates   `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	Weather            Weather        `json:"weather" bson:"weather" validate:"enum"`
	RoadCondition      RoadCondition  `json:"roadCondition" bson:"roadCondition" validate:"enum"`
	LightCondition     LightCondition `json:"lightCondition" bson:"lightCondition" validate:"enum"`
	Injuries           int            `json:"injuries" bson:"injuries" validate:"gte=0"`
	Fatalities         int            `json:"fatalities" bson:"fatalities" validate:"gte=0"`
	EstimatedDamage    *float64       `json:"estimatedDamage,omitempty" bson:"estimatedDamage,omitempty" validate:"omitempty,gte=0"`
	PoliceReportNumber string         `json:"policeReportNumber,omitempty" bson:"policeReportNumber,omitempty"`
	Description        string         `json:"description" bson:"description"`
	CreatedAt          time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt" bson:"updatedAt"`
	Version            int32          `json:"__v" bson:"__v"`
}

// Severity grades the accident by its casualties
func (a Accident) Severity() Severity {
	switch {
	case a.Fatalities > 0:
		return SeverityFatal
	case a.Injuries > 2:
		return SeveritySevere
	case a.Injuries > 0:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}
