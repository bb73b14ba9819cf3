// Package validation checks the field invariants of every record before it is
// written. Each function returns a normalized copy of its input or a
// *models.ValidationError naming the first offending field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/linesmerrill/accident-recon-api/models"
)

// MinVehicleYear is the oldest model year accepted for a vehicle
const MinVehicleYear = 1900

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("enum", validateEnum); err != nil {
		panic(fmt.Sprintf("register enum validation: %v", err))
	}
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

type enum interface {
	Valid() bool
}

// validateEnum accepts closed enum types that know their own members
func validateEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(enum)
	if !ok {
		return false
	}
	return e.Valid()
}

// structErr runs the tag rules on v and converts the first failure
func structErr(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("record", "%v", err)
	}
	fe := fieldErrs[0]
	return models.NewValidationError(fieldPath(fe), "%s", describe(fe))
}

// fieldPath drops the root struct name from the namespace, e.g.
// "Accident.coordinates.latitude" becomes "coordinates.latitude".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "enum":
		return fmt.Sprintf("%q is not an allowed value", fe.Value())
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	}
	return "failed the " + fe.Tag() + " rule"
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// User validates a user record, lower-casing its email
func User(u models.User) (models.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	if u.Role == "" {
		u.Role = models.RoleViewer
	}
	if err := structErr(u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Case validates a case record
func Case(c models.Case) (models.Case, error) {
	c.CaseNumber = strings.TrimSpace(c.CaseNumber)
	c.Title = strings.TrimSpace(c.Title)
	if c.Status == "" {
		c.Status = models.CaseStatusDraft
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	c.Tags = trimAll(c.Tags)
	if c.Metadata == nil {
		c.Metadata = map[string]interface{}{}
	}
	if c.StatusHistory == nil {
		c.StatusHistory = []models.StatusChange{}
	}
	if err := structErr(c); err != nil {
		return models.Case{}, err
	}
	return c, nil
}

// Accident validates an accident record
func Accident(a models.Accident) (models.Accident, error) {
	a.Location = strings.TrimSpace(a.Location)
	a.PoliceReportNumber = strings.TrimSpace(a.PoliceReportNumber)
	if a.Weather == "" {
		a.Weather = models.WeatherUnknown
	}
	if a.RoadCondition == "" {
		a.RoadCondition = models.RoadUnknown
	}
	if a.LightCondition == "" {
		a.LightCondition = models.LightUnknown
	}
	if a.DateTime.IsZero() {
		return models.Accident{}, models.NewValidationError("dateTime", "is required")
	}
	if err := structErr(a); err != nil {
		return models.Accident{}, err
	}
	return a, nil
}

// Vehicle validates a vehicle record. The year bound moves with the calendar,
// so it is checked against now rather than a tag.
func Vehicle(v models.Vehicle, now time.Time) (models.Vehicle, error) {
	v.Make = strings.TrimSpace(v.Make)
	v.Model = strings.TrimSpace(v.Model)
	v.DriverName = strings.TrimSpace(v.DriverName)
	v.LicensePlate = strings.ToUpper(strings.TrimSpace(v.LicensePlate))
	v.VIN = strings.ToUpper(strings.TrimSpace(v.VIN))
	if v.DamageSeverity == "" {
		v.DamageSeverity = models.DamageNone
	}
	if err := structErr(v); err != nil {
		return models.Vehicle{}, err
	}
	if maxYear := now.Year() + 2; v.Year < MinVehicleYear || v.Year > maxYear {
		return models.Vehicle{}, models.NewValidationError("year", "must be between %d and %d", MinVehicleYear, maxYear)
	}
	if v.InjuredOccupants > v.Occupants {
		return models.Vehicle{}, models.NewValidationError("injuredOccupants", "cannot exceed occupants (%d)", v.Occupants)
	}
	return v, nil
}

// Witness validates a witness record
func Witness(w models.Witness) (models.Witness, error) {
	w.Name = strings.TrimSpace(w.Name)
	w.Statement = strings.TrimSpace(w.Statement)
	w.Email = strings.ToLower(strings.TrimSpace(w.Email))
	if w.Reliability == "" {
		w.Reliability = models.ReliabilityUnknown
	}
	if w.Recordings == nil {
		w.Recordings = []string{}
	}
	if w.Photos == nil {
		w.Photos = []string{}
	}
	if err := structErr(w); err != nil {
		return models.Witness{}, err
	}
	return w, nil
}

// Evidence validates an evidence record
func Evidence(e models.Evidence) (models.Evidence, error) {
	e.Description = strings.TrimSpace(e.Description)
	e.CollectedBy = strings.TrimSpace(e.CollectedBy)
	if e.CustodyStatus == "" {
		e.CustodyStatus = models.CustodyCollected
	}
	if e.CopyNumber == 0 {
		e.CopyNumber = 1
	}
	if e.ChainOfCustody == nil {
		e.ChainOfCustody = []models.CustodyEntry{}
	}
	e.Tags = trimAll(e.Tags)
	if err := structErr(e); err != nil {
		return models.Evidence{}, err
	}
	return e, nil
}

// InsuranceClaim validates a claim record, including paid <= approved
func InsuranceClaim(c models.InsuranceClaim) (models.InsuranceClaim, error) {
	c.ClaimNumber = strings.TrimSpace(c.ClaimNumber)
	c.Insurer = strings.TrimSpace(c.Insurer)
	if c.Status == "" {
		c.Status = models.ClaimStatusDraft
	}
	if c.Documents == nil {
		c.Documents = []models.ClaimDocument{}
	}
	if c.Communications == nil {
		c.Communications = []models.Communication{}
	}
	if c.Payments == nil {
		c.Payments = []models.Payment{}
	}
	if err := structErr(c); err != nil {
		return models.InsuranceClaim{}, err
	}
	if c.ApprovedAmount != nil && c.PaidAmount != nil && *c.PaidAmount > *c.ApprovedAmount {
		return models.InsuranceClaim{}, models.NewValidationError("paidAmount", "cannot exceed approved amount (%.2f)", *c.ApprovedAmount)
	}
	return c, nil
}
