package lifecycle

import (
	"time"

	"github.com/linesmerrill/accident-recon-api/models"
)

// AddCustodyEntry appends a hand-over from one custodian to another and makes
// to the current custodian. Existing entries are never touched.
func AddCustodyEntry(e models.Evidence, from, to, reason, signature string, now time.Time) (models.Evidence, error) {
	if to == "" {
		return e, models.NewValidationError("chainOfCustody.to", "is required")
	}
	if reason == "" {
		return e, models.NewValidationError("chainOfCustody.reason", "is required")
	}
	chain := make([]models.CustodyEntry, len(e.ChainOfCustody), len(e.ChainOfCustody)+1)
	copy(chain, e.ChainOfCustody)
	e.ChainOfCustody = append(chain, models.CustodyEntry{
		Timestamp: now,
		From:      from,
		To:        to,
		Reason:    reason,
		Signature: signature,
	})
	e.CurrentCustodian = to
	e.UpdatedAt = now
	return e, nil
}

// TransferCustody hands e from its current custodian, or its collector when it
// has none yet, to to.
func TransferCustody(e models.Evidence, to, reason, signature string, now time.Time) (models.Evidence, error) {
	from := e.CurrentCustodian
	if from == "" {
		from = e.CollectedBy
	}
	out, err := AddCustodyEntry(e, from, to, reason, signature, now)
	if err != nil {
		return e, err
	}
	out.CustodyStatus = models.CustodyTransferred
	return out, nil
}

// MarkAnalyzed records the analysis result. Analysis is not a hand-over, so the
// chain of custody is not appended to.
func MarkAnalyzed(e models.Evidence, by, findings, notes string, now time.Time) (models.Evidence, error) {
	if by == "" {
		return e, models.NewValidationError("analyzedBy", "is required")
	}
	analyzed := now
	e.AnalyzedDate = &analyzed
	e.AnalyzedBy = by
	e.Findings = findings
	e.AnalysisNotes = notes
	e.CustodyStatus = models.CustodyAnalyzed
	e.UpdatedAt = now
	return e, nil
}

// SetCustodyStatus moves e to a status that needs neither a chain entry nor an
// analysis record. Transferred and Analyzed are only reached through
// TransferCustody and MarkAnalyzed, Collected only at creation.
func SetCustodyStatus(e models.Evidence, status models.CustodyStatus, now time.Time) (models.Evidence, error) {
	if status == e.CustodyStatus {
		return e, nil
	}
	switch status {
	case models.CustodyInStorage, models.CustodyReleased, models.CustodyDestroyed:
	default:
		return e, models.NewValidationError("custodyStatus", "cannot be set to %q directly", status)
	}
	e.CustodyStatus = status
	e.UpdatedAt = now
	return e, nil
}
