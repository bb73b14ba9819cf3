package investigation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/accident-recon-api/databases"
	"github.com/linesmerrill/accident-recon-api/lifecycle"
	"github.com/linesmerrill/accident-recon-api/models"
	"github.com/linesmerrill/accident-recon-api/validation"
)

func (s *Service) caseNumbering(given bool, now time.Time) numbering {
	return numbering{
		kind:     "case",
		field:    "caseNumber",
		given:    given,
		generate: func() string { return models.NewCaseNumber(now) },
		taken: func(ctx context.Context, number string) (bool, error) {
			found, err := s.repos.Cases.FindByCaseNumber(ctx, number)
			return found != nil, err
		},
	}
}

// newCase stamps the system fields of a case about to be created and validates it
func newCase(c models.Case, now time.Time) (models.Case, error) {
	c.ID = uuid.NewString()
	c.Version = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	c.ClosedAt = nil
	c.StatusHistory = nil
	if c.Status.Terminal() {
		closed := now
		c.ClosedAt = &closed
	}
	if strings.TrimSpace(c.CaseNumber) == "" {
		c.CaseNumber = models.NewCaseNumber(now)
	}
	return validation.Case(c)
}

// checkCaseUsers makes sure the owner exists and the assignee, when set, is an
// active user
func (s *Service) checkCaseUsers(ctx context.Context, c models.Case) error {
	if _, err := s.repos.Users.FindByID(ctx, c.UserID); err != nil {
		return err
	}
	if c.AssignedTo == "" {
		return nil
	}
	return s.checkInvestigator(ctx, c.AssignedTo)
}

func (s *Service) checkInvestigator(ctx context.Context, id string) error {
	u, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.IsActive {
		return models.NewValidationError("assignedTo", "user %s is deactivated", id)
	}
	return nil
}

// CreateCase stores a new case. A missing case number is generated.
func (s *Service) CreateCase(ctx context.Context, c models.Case) (models.Case, error) {
	now := s.clock()
	given := strings.TrimSpace(c.CaseNumber) != ""
	c, err := newCase(c, now)
	if err != nil {
		return models.Case{}, err
	}
	if err := s.checkCaseUsers(ctx, c); err != nil {
		return models.Case{}, err
	}
	_, err = s.insertNumbered(ctx, "create_case", s.caseNumbering(given, now), c.CaseNumber,
		[]string{lockKey("case", c.ID)},
		func(ctx context.Context, number string) error {
			c.CaseNumber = number
			return s.repos.Cases.Insert(ctx, c)
		})
	if err != nil {
		return models.Case{}, err
	}
	return c, nil
}

// CreateCaseWithAccident stores a case and its accident as one unit. Both are
// validated before either is written.
func (s *Service) CreateCaseWithAccident(ctx context.Context, c models.Case, a models.Accident) (models.Case, models.Accident, error) {
	now := s.clock()
	given := strings.TrimSpace(c.CaseNumber) != ""
	c, err := newCase(c, now)
	if err != nil {
		return models.Case{}, models.Accident{}, err
	}
	a.CaseID = c.ID
	a, err = newAccident(a, now)
	if err != nil {
		return models.Case{}, models.Accident{}, err
	}
	if err := s.checkCaseUsers(ctx, c); err != nil {
		return models.Case{}, models.Accident{}, err
	}
	_, err = s.insertNumbered(ctx, "create_case", s.caseNumbering(given, now), c.CaseNumber,
		[]string{lockKey("case", c.ID)},
		func(ctx context.Context, number string) error {
			c.CaseNumber = number
			return s.store.WithTransaction(ctx, func(ctx context.Context) error {
				if err := s.repos.Cases.Insert(ctx, c); err != nil {
					return err
				}
				if err := s.repos.Accidents.Insert(ctx, a); err != nil {
					// stores without transactions keep the case otherwise
					if derr := s.repos.Cases.Delete(ctx, c.ID); derr != nil {
						zap.S().Errorw("failed to remove case after accident insert failed",
							"caseID", c.ID, "error", derr)
					}
					return err
				}
				return nil
			})
		})
	if err != nil {
		return models.Case{}, models.Accident{}, err
	}
	return c, a, nil
}

// UpdateCase changes the descriptive fields of a case. Status, assignment and
// numbering have their own operations and are kept from the stored record.
func (s *Service) UpdateCase(ctx context.Context, c models.Case) (models.Case, error) {
	return modify(ctx, s, "update_case", lockKey("case", c.ID),
		func(ctx context.Context) (models.Case, error) { return s.repos.Cases.FindByID(ctx, c.ID) },
		func(current models.Case, now time.Time) (models.Case, error) {
			next := current
			next.Title = c.Title
			next.Description = c.Description
			next.Priority = c.Priority
			next.DueDate = c.DueDate
			next.Tags = c.Tags
			next.Metadata = c.Metadata
			next.UpdatedAt = now
			return validation.Case(next)
		},
		s.repos.Cases.Update,
	)
}

// TransitionCaseStatus moves a case to status and records notes in its history
func (s *Service) TransitionCaseStatus(ctx context.Context, id string, status models.CaseStatus, notes string) (models.Case, error) {
	return modify(ctx, s, "transition_case", lockKey("case", id),
		func(ctx context.Context) (models.Case, error) { return s.repos.Cases.FindByID(ctx, id) },
		func(current models.Case, now time.Time) (models.Case, error) {
			return lifecycle.TransitionCase(current, status, strings.TrimSpace(notes), now)
		},
		s.repos.Cases.Update,
	)
}

// AssignCase hands a case to an active investigator
func (s *Service) AssignCase(ctx context.Context, id, investigatorID string) (models.Case, error) {
	return modify(ctx, s, "assign_case", lockKey("case", id),
		func(ctx context.Context) (models.Case, error) {
			c, err := s.repos.Cases.FindByID(ctx, id)
			if err != nil {
				return c, err
			}
			if investigatorID != "" {
				err = s.checkInvestigator(ctx, investigatorID)
			}
			return c, err
		},
		func(current models.Case, now time.Time) (models.Case, error) {
			return lifecycle.AssignCase(current, investigatorID, now)
		},
		s.repos.Cases.Update,
	)
}

// DeleteCase removes a case with its accident, the accident's vehicles,
// witnesses and evidence, and the case's claims. Children go first so a
// failure never leaves a child without its case.
func (s *Service) DeleteCase(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_case", []string{lockKey("case", id)}, func(ctx context.Context) error {
		if _, err := s.repos.Cases.FindByID(ctx, id); err != nil {
			return err
		}
		accident, err := s.repos.Accidents.FindByCaseID(ctx, id)
		if err != nil {
			return err
		}
		var accidentKeys []string
		if accident != nil {
			accidentKeys = append(accidentKeys, lockKey("accident", accident.ID))
		}
		return s.store.WithLock(ctx, accidentKeys, func(ctx context.Context) error {
			return s.store.WithTransaction(ctx, func(ctx context.Context) error {
				return s.cascadeDelete(ctx, id, accident)
			})
		})
	})
}

func (s *Service) cascadeDelete(ctx context.Context, caseID string, accident *models.Accident) error {
	var vehicles, witnesses, evidence int64
	if accident != nil {
		var err error
		if vehicles, err = s.repos.Vehicles.DeleteByAccident(ctx, accident.ID); err != nil {
			return err
		}
		if witnesses, err = s.repos.Witnesses.DeleteByAccident(ctx, accident.ID); err != nil {
			return err
		}
		if evidence, err = s.repos.Evidence.DeleteByAccident(ctx, accident.ID); err != nil {
			return err
		}
		if err = s.repos.Accidents.Delete(ctx, accident.ID); err != nil {
			return err
		}
	}
	claims, err := s.repos.Claims.DeleteByCase(ctx, caseID)
	if err != nil {
		return err
	}
	if err := s.repos.Cases.Delete(ctx, caseID); err != nil {
		return err
	}
	s.metrics.cascade()
	zap.S().Infow("case deleted",
		"caseID", caseID,
		"accident", accident != nil,
		"vehicles", vehicles,
		"witnesses", witnesses,
		"evidence", evidence,
		"claims", claims,
	)
	return nil
}

// CaseDetail loads a case with every child record
func (s *Service) CaseDetail(ctx context.Context, id string) (models.CaseDetail, error) {
	return s.repos.Cases.FindFullDetail(ctx, id, s.clock())
}

// OverdueCases lists open cases past their due date, earliest due first
func (s *Service) OverdueCases(ctx context.Context) ([]models.Case, error) {
	return s.repos.Cases.FindOverdue(ctx, s.clock())
}

// CaseStatistics summarizes the cases matching f
func (s *Service) CaseStatistics(ctx context.Context, f databases.CaseFilter) (models.CaseStatistics, error) {
	return s.repos.Cases.Statistics(ctx, f, s.clock())
}

// AccidentStatistics summarizes the accidents matching f
func (s *Service) AccidentStatistics(ctx context.Context, f databases.AccidentFilter) (models.AccidentStatistics, error) {
	return s.repos.Accidents.Statistics(ctx, f)
}

// ClaimStatistics summarizes the claims matching f
func (s *Service) ClaimStatistics(ctx context.Context, f databases.ClaimFilter) (models.ClaimStatistics, error) {
	return s.repos.Claims.Statistics(ctx, f)
}
