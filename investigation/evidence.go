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

func (s *Service) evidenceNumbering(given bool) numbering {
	return numbering{
		kind:     "evidence",
		field:    "evidenceNumber",
		given:    given,
		generate: func() string { return models.NewEvidenceNumber(s.clock()) },
		taken: func(ctx context.Context, number string) (bool, error) {
			found, err := s.repos.Evidence.FindByEvidenceNumber(ctx, number)
			return found != nil, err
		},
	}
}

// CreateEvidence logs a new piece of evidence against an accident. It starts
// in the custody of its collector with an empty chain of custody.
func (s *Service) CreateEvidence(ctx context.Context, e models.Evidence) (models.Evidence, error) {
	now := s.clock()
	e.ID = uuid.NewString()
	e.Version = 0
	e.CreatedAt = now
	e.UpdatedAt = now
	e.ChainOfCustody = nil
	e.AnalyzedDate = nil
	e.AnalyzedBy = ""
	switch e.CustodyStatus {
	case "", models.CustodyCollected, models.CustodyInStorage:
	default:
		return models.Evidence{}, models.NewValidationError("custodyStatus", "new evidence is collected or in storage, not %q", e.CustodyStatus)
	}
	if e.CollectedAt.IsZero() {
		e.CollectedAt = now
	}
	given := strings.TrimSpace(e.EvidenceNumber) != ""
	if !given {
		e.EvidenceNumber = models.NewEvidenceNumber(now)
	}
	e, err := validation.Evidence(e)
	if err != nil {
		return models.Evidence{}, err
	}
	if e.CurrentCustodian == "" {
		e.CurrentCustodian = e.CollectedBy
	}

	_, err = s.insertNumbered(ctx, "create_evidence", s.evidenceNumbering(given), e.EvidenceNumber,
		[]string{lockKey("accident", e.AccidentID)},
		func(ctx context.Context, number string) error {
			if _, err := s.repos.Accidents.FindByID(ctx, e.AccidentID); err != nil {
				return err
			}
			e.EvidenceNumber = number
			return s.repos.Evidence.Insert(ctx, e)
		})
	if err != nil {
		return models.Evidence{}, err
	}
	return e, nil
}

// UpdateEvidence replaces the descriptive fields of an evidence item. The
// custody chain, custodian and analysis result only change through the custody
// operations; the status may only move to in storage, released or destroyed.
func (s *Service) UpdateEvidence(ctx context.Context, e models.Evidence) (models.Evidence, error) {
	return modify(ctx, s, "update_evidence", lockKey("evidence", e.ID),
		func(ctx context.Context) (models.Evidence, error) { return s.repos.Evidence.FindByID(ctx, e.ID) },
		func(current models.Evidence, now time.Time) (models.Evidence, error) {
			next := current
			next.Type = e.Type
			next.Source = e.Source
			next.Description = e.Description
			next.CopyNumber = e.CopyNumber
			next.Priority = e.Priority
			next.IsAdmissible = e.IsAdmissible
			next.Tags = e.Tags
			next.UpdatedAt = now
			if e.CustodyStatus != "" {
				var err error
				if next, err = lifecycle.SetCustodyStatus(next, e.CustodyStatus, now); err != nil {
					return models.Evidence{}, err
				}
			}
			return validation.Evidence(next)
		},
		s.repos.Evidence.Update,
	)
}

func (s *Service) custody(ctx context.Context, op, id string, change func(models.Evidence, time.Time) (models.Evidence, error)) (models.Evidence, error) {
	return modify(ctx, s, op, lockKey("evidence", id),
		func(ctx context.Context) (models.Evidence, error) { return s.repos.Evidence.FindByID(ctx, id) },
		change,
		s.repos.Evidence.Update,
	)
}

// AddCustodyEntry appends a hand-over from one custodian to another
func (s *Service) AddCustodyEntry(ctx context.Context, id, from, to, reason, signature string) (models.Evidence, error) {
	return s.custody(ctx, "add_custody_entry", id, func(e models.Evidence, now time.Time) (models.Evidence, error) {
		return lifecycle.AddCustodyEntry(e, strings.TrimSpace(from), strings.TrimSpace(to), strings.TrimSpace(reason), signature, now)
	})
}

// TransferCustody hands an evidence item from its current custodian to another
func (s *Service) TransferCustody(ctx context.Context, id, to, reason, signature string) (models.Evidence, error) {
	return s.custody(ctx, "transfer_custody", id, func(e models.Evidence, now time.Time) (models.Evidence, error) {
		return lifecycle.TransferCustody(e, strings.TrimSpace(to), strings.TrimSpace(reason), signature, now)
	})
}

// MarkAnalyzed records the analysis result of an evidence item
func (s *Service) MarkAnalyzed(ctx context.Context, id, by, findings, notes string) (models.Evidence, error) {
	return s.custody(ctx, "mark_analyzed", id, func(e models.Evidence, now time.Time) (models.Evidence, error) {
		return lifecycle.MarkAnalyzed(e, strings.TrimSpace(by), findings, notes, now)
	})
}
