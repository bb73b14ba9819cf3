package investigation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/accident-recon-api/models"
	"github.com/linesmerrill/accident-recon-api/validation"
)

// MinPasswordLength is the shortest password CreateUser accepts
const MinPasswordLength = 8

// Authentication failures. They deliberately carry no detail about which part
// of the credentials was wrong.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked after too many failed logins")
	ErrAccountInactive    = errors.New("account is deactivated")
)

func isAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAccountLocked) || errors.Is(err, ErrAccountInactive)
}

func emailKey(email string) string {
	return lockKey("user-email", strings.ToLower(strings.TrimSpace(email)))
}

// CreateUser stores a new active user with a bcrypt hash of password. Emails
// are unique regardless of case.
func (s *Service) CreateUser(ctx context.Context, u models.User, password string) (models.User, error) {
	if len(password) < MinPasswordLength {
		return models.User{}, models.NewValidationError("password", "must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, &models.StorageError{Op: "hash password", Err: err}
	}
	now := s.clock()
	u.ID = uuid.NewString()
	u.PasswordHash = string(hash)
	u.IsActive = true
	u.FailedLoginAttempts = 0
	u.LockUntil = nil
	u.LastLogin = nil
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Version = 0
	u, err = validation.User(u)
	if err != nil {
		return models.User{}, err
	}

	err = s.mutate(ctx, "create_user", []string{emailKey(u.Email)}, func(ctx context.Context) error {
		existing, err := s.repos.Users.FindByEmail(ctx, u.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return models.NewValidationError("email", "%s is already registered", u.Email)
		}
		return s.repos.Users.Insert(ctx, u)
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UpdateUser changes the profile fields of a user. Credentials, login
// bookkeeping and the active flag are kept from the stored record.
func (s *Service) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	var out models.User
	keys := []string{lockKey("user", u.ID), emailKey(u.Email)}
	err := s.mutate(ctx, "update_user", keys, func(ctx context.Context) error {
		current, err := s.repos.Users.FindByID(ctx, u.ID)
		if err != nil {
			return err
		}
		next := current
		next.Email = u.Email
		next.FirstName = u.FirstName
		next.LastName = u.LastName
		if u.Role != "" {
			next.Role = u.Role
		}
		next.UpdatedAt = s.clock()
		next, err = validation.User(next)
		if err != nil {
			return err
		}
		if next.Email != current.Email {
			existing, err := s.repos.Users.FindByEmail(ctx, next.Email)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != next.ID {
				return models.NewValidationError("email", "%s is already registered", next.Email)
			}
		}
		out, err = s.repos.Users.Update(ctx, next)
		return err
	})
	if err != nil {
		return models.User{}, err
	}
	return out, nil
}

// DeactivateUser turns a user off. Users are never deleted because cases keep
// referring to them.
func (s *Service) DeactivateUser(ctx context.Context, id string) (models.User, error) {
	return modify(ctx, s, "deactivate_user", lockKey("user", id),
		func(ctx context.Context) (models.User, error) { return s.repos.Users.FindByID(ctx, id) },
		func(u models.User, now time.Time) (models.User, error) {
			u.IsActive = false
			u.UpdatedAt = now
			return u, nil
		},
		s.repos.Users.Update,
	)
}

// CheckActive tells whether credentials issued to user id earlier may still be
// used. It fails with ErrAccountInactive after DeactivateUser, ErrAccountLocked
// during a lockout and ErrInvalidCredentials when the user no longer exists.
func (s *Service) CheckActive(ctx context.Context, id string) error {
	u, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !u.IsActive {
		return ErrAccountInactive
	}
	if u.IsLocked(s.clock()) {
		return ErrAccountLocked
	}
	return nil
}

// Authenticate checks email and password. MaxFailedLogins consecutive failures
// lock the account for LockDuration; a success clears the counter and stamps
// LastLogin.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	found, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if found == nil {
		return models.User{}, ErrInvalidCredentials
	}
	id := found.ID

	var out models.User
	var authErr error
	err = s.mutate(ctx, "authenticate", []string{lockKey("user", id)}, func(ctx context.Context) error {
		authErr = nil
		u, err := s.repos.Users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		now := s.clock()
		if !u.IsActive {
			authErr = ErrAccountInactive
			return nil
		}
		if u.IsLocked(now) {
			authErr = ErrAccountLocked
			return nil
		}
		if u.LockUntil != nil {
			u.LockUntil = nil
			u.FailedLoginAttempts = 0
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			u.FailedLoginAttempts++
			if u.FailedLoginAttempts >= models.MaxFailedLogins {
				until := now.Add(models.LockDuration)
				u.LockUntil = &until
			}
			authErr = ErrInvalidCredentials
		} else {
			u.FailedLoginAttempts = 0
			u.LastLogin = &now
		}
		u.UpdatedAt = now
		out, err = s.repos.Users.Update(ctx, u)
		return err
	})
	if err != nil {
		return models.User{}, err
	}
	if authErr != nil {
		return models.User{}, authErr
	}
	return out, nil
}
