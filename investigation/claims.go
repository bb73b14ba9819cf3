package investigation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linesmerrill/accident-recon-api/lifecycle"
	"github.com/linesmerrill/accident-recon-api/models"
	"github.com/linesmerrill/accident-recon-api/validation"
)

func (s *Service) claimNumbering(given bool, now time.Time) numbering {
	return numbering{
		kind:     "claim",
		field:    "claimNumber",
		given:    given,
		generate: func() string { return models.NewClaimNumber(now) },
		taken: func(ctx context.Context, number string) (bool, error) {
			found, err := s.repos.Claims.FindByClaimNumber(ctx, number)
			return found != nil, err
		},
	}
}

// CreateInsuranceClaim files a claim against an existing case. A claim created
// past Draft gets the timestamp its status owns.
func (s *Service) CreateInsuranceClaim(ctx context.Context, c models.InsuranceClaim) (models.InsuranceClaim, error) {
	now := s.clock()
	c.ID = uuid.NewString()
	c.Version = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	c.SubmittedDate, c.ReviewStartDate, c.DecisionDate, c.SettlementDate, c.ClosedDate = nil, nil, nil, nil, nil
	c.Payments = nil
	c.PaidAmount = nil
	if c.FiledDate.IsZero() {
		c.FiledDate = now
	}
	given := strings.TrimSpace(c.ClaimNumber) != ""
	if !given {
		c.ClaimNumber = models.NewClaimNumber(now)
	}
	if c.Status != "" && c.Status != models.ClaimStatusDraft {
		var err error
		if c, err = lifecycle.TransitionClaim(c, c.Status, now); err != nil {
			return models.InsuranceClaim{}, err
		}
	}
	c, err := validation.InsuranceClaim(c)
	if err != nil {
		return models.InsuranceClaim{}, err
	}

	_, err = s.insertNumbered(ctx, "create_claim", s.claimNumbering(given, now), c.ClaimNumber,
		[]string{lockKey("case", c.CaseID)},
		func(ctx context.Context, number string) error {
			if _, err := s.repos.Cases.FindByID(ctx, c.CaseID); err != nil {
				return err
			}
			c.ClaimNumber = number
			return s.repos.Claims.Insert(ctx, c)
		})
	if err != nil {
		return models.InsuranceClaim{}, err
	}
	return c, nil
}

// UpdateInsuranceClaim changes the coverage details of a claim. Status dates,
// logs and the paid amount are owned by the claim operations and kept.
func (s *Service) UpdateInsuranceClaim(ctx context.Context, c models.InsuranceClaim) (models.InsuranceClaim, error) {
	return s.claim(ctx, "update_claim", c.ID, func(current models.InsuranceClaim, now time.Time) (models.InsuranceClaim, error) {
		next := current
		next.Type = c.Type
		next.Insurer = c.Insurer
		next.PolicyNumber = c.PolicyNumber
		next.Amount = c.Amount
		next.ApprovedAmount = c.ApprovedAmount
		next.Deductible = c.Deductible
		next.UpdatedAt = now
		return validation.InsuranceClaim(next)
	})
}

func (s *Service) claim(ctx context.Context, op, id string, change func(models.InsuranceClaim, time.Time) (models.InsuranceClaim, error)) (models.InsuranceClaim, error) {
	return modify(ctx, s, op, lockKey("claim", id),
		func(ctx context.Context) (models.InsuranceClaim, error) { return s.repos.Claims.FindByID(ctx, id) },
		change,
		s.repos.Claims.Update,
	)
}

// TransitionClaimStatus moves a claim to status, stamping its date once
func (s *Service) TransitionClaimStatus(ctx context.Context, id string, status models.ClaimStatus) (models.InsuranceClaim, error) {
	return s.claim(ctx, "transition_claim", id, func(c models.InsuranceClaim, now time.Time) (models.InsuranceClaim, error) {
		return lifecycle.TransitionClaim(c, status, now)
	})
}

// RecordPayment adds a payment to a claim. Concurrent payments on one claim
// are applied one after another, never over each other.
func (s *Service) RecordPayment(ctx context.Context, id string, p models.Payment) (models.InsuranceClaim, error) {
	return s.claim(ctx, "record_payment", id, func(c models.InsuranceClaim, now time.Time) (models.InsuranceClaim, error) {
		next, err := lifecycle.RecordPayment(c, p, now)
		if err != nil {
			return c, err
		}
		return validation.InsuranceClaim(next)
	})
}

// AddClaimDocument attaches a document reference to a claim
func (s *Service) AddClaimDocument(ctx context.Context, id string, d models.ClaimDocument) (models.InsuranceClaim, error) {
	return s.claim(ctx, "add_claim_document", id, func(c models.InsuranceClaim, now time.Time) (models.InsuranceClaim, error) {
		return lifecycle.AddClaimDocument(c, d, now)
	})
}

// AddClaimCommunication logs an exchange with the insurer
func (s *Service) AddClaimCommunication(ctx context.Context, id string, m models.Communication) (models.InsuranceClaim, error) {
	return s.claim(ctx, "add_claim_communication", id, func(c models.InsuranceClaim, now time.Time) (models.InsuranceClaim, error) {
		return lifecycle.AddClaimCommunication(c, m, now)
	})
}
