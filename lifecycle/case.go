// Package lifecycle holds the state machines of the investigation records: case
// status, insurance claim status and the evidence chain of custody. Every
// function takes a record by value and returns the advanced copy; the input and
// any slices it shares are left untouched.
package lifecycle

import (
	"time"

	"github.com/linesmerrill/accident-recon-api/models"
)

// TransitionCase moves c to status. Any status may follow any other. Entering
// Archived or Closed stamps ClosedAt the first time; leaving them keeps it.
func TransitionCase(c models.Case, status models.CaseStatus, notes string, now time.Time) (models.Case, error) {
	if !status.Valid() {
		return c, models.NewValidationError("status", "%q is not an allowed value", status)
	}
	history := make([]models.StatusChange, len(c.StatusHistory), len(c.StatusHistory)+1)
	copy(history, c.StatusHistory)
	c.StatusHistory = append(history, models.StatusChange{
		From:      c.Status,
		To:        status,
		Notes:     notes,
		ChangedAt: now,
	})
	c.Status = status
	if status.Terminal() && c.ClosedAt == nil {
		closed := now
		c.ClosedAt = &closed
	}
	c.UpdatedAt = now
	return c, nil
}

// AssignCase hands c to an investigator
func AssignCase(c models.Case, investigatorID string, now time.Time) (models.Case, error) {
	if investigatorID == "" {
		return c, models.NewValidationError("assignedTo", "is required")
	}
	c.AssignedTo = investigatorID
	c.UpdatedAt = now
	return c, nil
}
