package models

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewCaseNumber returns a case number of the form ACC-<year>-<5 digits>
func NewCaseNumber(now time.Time) string {
	return fmt.Sprintf("ACC-%d-%05d", now.Year(), rand.IntN(100000))
}

// NewEvidenceNumber returns an evidence number of the form
// EV-<year>-<last 6 digits of the unix millis>-<3 digits>
func NewEvidenceNumber(now time.Time) string {
	return fmt.Sprintf("EV-%d-%06d-%03d", now.Year(), now.UnixMilli()%1000000, rand.IntN(1000))
}

// NewClaimNumber returns a claim number of the form CLM-<year>-<6 digits>
func NewClaimNumber(now time.Time) string {
	return fmt.Sprintf("CLM-%d-%06d", now.Year(), rand.IntN(1000000))
}
