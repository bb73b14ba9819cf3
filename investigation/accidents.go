package investigation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/linesmerrill/accident-recon-api/models"
	"github.com/linesmerrill/accident-recon-api/validation"
)

func newAccident(a models.Accident, now time.Time) (models.Accident, error) {
	a.ID = uuid.NewString()
	a.Version = 0
	a.CreatedAt = now
	a.UpdatedAt = now
	return validation.Accident(a)
}

// CreateAccident stores the accident of an existing case. A case has at most
// one accident.
func (s *Service) CreateAccident(ctx context.Context, a models.Accident) (models.Accident, error) {
	a, err := newAccident(a, s.clock())
	if err != nil {
		return models.Accident{}, err
	}
	err = s.mutate(ctx, "create_accident", []string{lockKey("case", a.CaseID)}, func(ctx context.Context) error {
		if _, err := s.repos.Cases.FindByID(ctx, a.CaseID); err != nil {
			return err
		}
		existing, err := s.repos.Accidents.FindByCaseID(ctx, a.CaseID)
		if err != nil {
			return err
		}
		if existing != nil {
			return models.NewValidationError("caseID", "case %s already has accident %s", a.CaseID, existing.ID)
		}
		return s.repos.Accidents.Insert(ctx, a)
	})
	if err != nil {
		return models.Accident{}, err
	}
	return a, nil
}

// UpdateAccident replaces the accident details; the owning case is kept
func (s *Service) UpdateAccident(ctx context.Context, a models.Accident) (models.Accident, error) {
	return modify(ctx, s, "update_accident", lockKey("accident", a.ID),
		func(ctx context.Context) (models.Accident, error) { return s.repos.Accidents.FindByID(ctx, a.ID) },
		func(current models.Accident, now time.Time) (models.Accident, error) {
			next := a
			next.CaseID = current.CaseID
			next.CreatedAt = current.CreatedAt
			next.Version = current.Version
			next.UpdatedAt = now
			return validation.Accident(next)
		},
		s.repos.Accidents.Update,
	)
}

// withAccident runs fn while the accident is locked and known to exist, so
// nothing is attached to an accident that is being deleted
func (s *Service) withAccident(ctx context.Context, op, accidentID string, fn func(ctx context.Context) error) error {
	return s.mutate(ctx, op, []string{lockKey("accident", accidentID)}, func(ctx context.Context) error {
		if _, err := s.repos.Accidents.FindByID(ctx, accidentID); err != nil {
			return err
		}
		return fn(ctx)
	})
}

// CreateVehicle attaches a vehicle to an accident. Vehicles without a number
// get the next free one for their accident.
func (s *Service) CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	now := s.clock()
	v.ID = uuid.NewString()
	v.Version = 0
	v.CreatedAt = now
	v.UpdatedAt = now
	numbered := v.VehicleNumber != 0
	if !numbered {
		v.VehicleNumber = 1
	}
	if _, err := validation.Vehicle(v, now); err != nil {
		return models.Vehicle{}, err
	}

	var out models.Vehicle
	err := s.withAccident(ctx, "create_vehicle", v.AccidentID, func(ctx context.Context) error {
		if !numbered {
			n, err := s.repos.Vehicles.NextVehicleNumber(ctx, v.AccidentID)
			if err != nil {
				return err
			}
			v.VehicleNumber = n
		}
		valid, err := validation.Vehicle(v, now)
		if err != nil {
			return err
		}
		if err := s.repos.Vehicles.Insert(ctx, valid); err != nil {
			return err
		}
		out = valid
		return nil
	})
	if err != nil {
		return models.Vehicle{}, err
	}
	return out, nil
}

// UpdateVehicle replaces the vehicle details; accident and number are kept
func (s *Service) UpdateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	return modify(ctx, s, "update_vehicle", lockKey("vehicle", v.ID),
		func(ctx context.Context) (models.Vehicle, error) { return s.repos.Vehicles.FindByID(ctx, v.ID) },
		func(current models.Vehicle, now time.Time) (models.Vehicle, error) {
			next := v
			next.AccidentID = current.AccidentID
			next.VehicleNumber = current.VehicleNumber
			next.CreatedAt = current.CreatedAt
			next.Version = current.Version
			next.UpdatedAt = now
			return validation.Vehicle(next, now)
		},
		s.repos.Vehicles.Update,
	)
}

// CreateWitness attaches a witness statement to an accident
func (s *Service) CreateWitness(ctx context.Context, w models.Witness) (models.Witness, error) {
	now := s.clock()
	w.ID = uuid.NewString()
	w.Version = 0
	w.CreatedAt = now
	w.UpdatedAt = now
	w, err := validation.Witness(w)
	if err != nil {
		return models.Witness{}, err
	}
	err = s.withAccident(ctx, "create_witness", w.AccidentID, func(ctx context.Context) error {
		return s.repos.Witnesses.Insert(ctx, w)
	})
	if err != nil {
		return models.Witness{}, err
	}
	return w, nil
}

// UpdateWitness replaces the witness details; the accident is kept
func (s *Service) UpdateWitness(ctx context.Context, w models.Witness) (models.Witness, error) {
	return modify(ctx, s, "update_witness", lockKey("witness", w.ID),
		func(ctx context.Context) (models.Witness, error) { return s.repos.Witnesses.FindByID(ctx, w.ID) },
		func(current models.Witness, now time.Time) (models.Witness, error) {
			next := w
			next.AccidentID = current.AccidentID
			next.CreatedAt = current.CreatedAt
			next.Version = current.Version
			next.UpdatedAt = now
			return validation.Witness(next)
		},
		s.repos.Witnesses.Update,
	)
}
