package lifecycle

import (
	"time"

	"github.com/linesmerrill/accident-recon-api/models"
)

// TransitionClaim moves c to status and stamps the timestamp that status owns,
// unless it is already set. Repeating a transition changes nothing but the
// status itself.
func TransitionClaim(c models.InsuranceClaim, status models.ClaimStatus, now time.Time) (models.InsuranceClaim, error) {
	if !status.Valid() {
		return c, models.NewValidationError("status", "%q is not an allowed value", status)
	}
	stamp := func(field **time.Time) {
		if *field == nil {
			t := now
			*field = &t
		}
	}
	switch status {
	case models.ClaimStatusSubmitted:
		stamp(&c.SubmittedDate)
	case models.ClaimStatusUnderReview:
		stamp(&c.ReviewStartDate)
	case models.ClaimStatusApproved, models.ClaimStatusPartiallyApproved, models.ClaimStatusDenied:
		stamp(&c.DecisionDate)
	case models.ClaimStatusSettled:
		stamp(&c.SettlementDate)
	case models.ClaimStatusClosed:
		stamp(&c.ClosedDate)
	case models.ClaimStatusDraft, models.ClaimStatusAdditionalInfoRequired, models.ClaimStatusAppealed:
		// no timestamp
	}
	c.Status = status
	c.UpdatedAt = now
	return c, nil
}

// RecordPayment appends p to the payment log and adds it to PaidAmount. A
// payment that would take PaidAmount above ApprovedAmount is rejected.
func RecordPayment(c models.InsuranceClaim, p models.Payment, now time.Time) (models.InsuranceClaim, error) {
	if p.Amount <= 0 {
		return c, models.NewValidationError("amount", "payment must be greater than 0")
	}
	paid := p.Amount
	if c.PaidAmount != nil {
		paid += *c.PaidAmount
	}
	if c.ApprovedAmount != nil && paid > *c.ApprovedAmount {
		return c, models.NewValidationError("paidAmount", "payment of %.2f would exceed approved amount %.2f", p.Amount, *c.ApprovedAmount)
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = now
	}
	payments := make([]models.Payment, len(c.Payments), len(c.Payments)+1)
	copy(payments, c.Payments)
	c.Payments = append(payments, p)
	c.PaidAmount = &paid
	c.UpdatedAt = now
	return c, nil
}

// AddClaimDocument appends d to the claim's documents
func AddClaimDocument(c models.InsuranceClaim, d models.ClaimDocument, now time.Time) (models.InsuranceClaim, error) {
	if d.Name == "" {
		return c, models.NewValidationError("documents.name", "is required")
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = now
	}
	docs := make([]models.ClaimDocument, len(c.Documents), len(c.Documents)+1)
	copy(docs, c.Documents)
	c.Documents = append(docs, d)
	c.UpdatedAt = now
	return c, nil
}

// AddClaimCommunication appends m to the claim's communication log
func AddClaimCommunication(c models.InsuranceClaim, m models.Communication, now time.Time) (models.InsuranceClaim, error) {
	if m.Message == "" {
		return c, models.NewValidationError("communications.message", "is required")
	}
	if m.SentAt.IsZero() {
		m.SentAt = now
	}
	log := make([]models.Communication, len(c.Communications), len(c.Communications)+1)
	copy(log, c.Communications)
	c.Communications = append(log, m)
	c.UpdatedAt = now
	return c, nil
}
