// Package investigation is the mutation entry point for the records API. Every
// create, update, transition and delete goes through Service, which validates
// before writing, serializes writers per record and retries the whole
// read-modify-write cycle when another process wins a version race.
package investigation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/accident-recon-api/databases"
	"github.com/linesmerrill/accident-recon-api/models"
)

// DefaultRetries is how often a conflicting mutation is retried
const DefaultRetries = 5

// numberAttempts bounds how many generated case, evidence or claim numbers are
// tried before giving up on finding a free one
const numberAttempts = 10

// Service stores the repositories and the store they share
type Service struct {
	repos      databases.Repositories
	store      databases.Store
	retries    int
	now        func() time.Time
	metrics    *Metrics
	bcryptCost int
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRetries sets how many times a conflicting mutation is retried
func WithRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// WithMetrics records mutations on m
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPasswordCost sets the bcrypt cost for new password hashes
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// NewService builds a Service over store
func NewService(store databases.Store, opts ...Option) *Service {
	s := &Service{
		repos:      databases.NewRepositories(store),
		store:      store,
		retries:    DefaultRetries,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repos exposes the repositories for read-only queries
func (s *Service) Repos() databases.Repositories {
	return s.repos
}

// clock is truncated to the millisecond precision of a bson DateTime so a
// record returned from a write equals the same record read back later
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// mutate runs fn under the locks for keys. A ConflictError from fn reruns it
// up to s.retries more times; fn must therefore reload whatever it changes.
func (s *Service) mutate(ctx context.Context, op string, keys []string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := s.store.WithLock(ctx, keys, func(ctx context.Context) error {
		var err error
		for attempt := 0; ; attempt++ {
			err = fn(ctx)
			var ce *models.ConflictError
			if !errors.As(err, &ce) || attempt >= s.retries {
				return err
			}
			s.metrics.conflict(op)
			zap.S().Debugw("retrying after version conflict",
				"op", op,
				"kind", ce.Kind,
				"id", ce.ID,
				"attempt", attempt+1,
			)
		}
	})
	s.metrics.observe(op, start, err)
	logFailure(op, keys, err)
	return err
}

func logFailure(op string, keys []string, err error) {
	if err == nil {
		return
	}
	var (
		ve *models.ValidationError
		nf *models.NotFoundError
	)
	if errors.As(err, &ve) || errors.As(err, &nf) || isAuthError(err) || errors.Is(err, errNumberTaken) {
		zap.S().Debugw("mutation rejected", "op", op, "keys", keys, "error", err)
		return
	}
	zap.S().Errorw("mutation failed", "op", op, "keys", keys, "error", err)
}

// modify is the load, change, save cycle shared by the update operations
func modify[T any](ctx context.Context, s *Service, op, key string,
	load func(ctx context.Context) (T, error),
	change func(current T, now time.Time) (T, error),
	save func(ctx context.Context, next T) (T, error),
) (T, error) {
	var out T
	err := s.mutate(ctx, op, []string{key}, func(ctx context.Context) error {
		current, err := load(ctx)
		if err != nil {
			return err
		}
		next, err := change(current, s.clock())
		if err != nil {
			return err
		}
		out, err = save(ctx, next)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func lockKey(kind, id string) string {
	return kind + ":" + id
}
