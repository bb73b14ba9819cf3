package investigation

import (
	"context"
	"errors"

	"github.com/linesmerrill/accident-recon-api/models"
)

var errNumberTaken = errors.New("number already taken")

// numbering describes a unique human-readable number of one record kind
type numbering struct {
	kind     string
	field    string
	given    bool
	generate func() string
	taken    func(ctx context.Context, number string) (bool, error)
}

// insertNumbered runs insert under the lock of the number it is about to use.
// A caller-supplied number that is taken fails validation; a generated one is
// regenerated up to numberAttempts times.
func (s *Service) insertNumbered(ctx context.Context, op string, n numbering, first string, keys []string,
	insert func(ctx context.Context, number string) error) (string, error) {
	number := first
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			number = n.generate()
		}
		locks := make([]string, 0, len(keys)+1)
		locks = append(locks, keys...)
		locks = append(locks, lockKey(n.kind+"-number", number))

		err := s.mutate(ctx, op, locks, func(ctx context.Context) error {
			taken, err := n.taken(ctx, number)
			if err != nil {
				return err
			}
			if taken {
				return errNumberTaken
			}
			return insert(ctx, number)
		})
		if !errors.Is(err, errNumberTaken) {
			return number, err
		}
		if n.given || attempt+1 >= numberAttempts {
			return "", models.NewValidationError(n.field, "%s is already in use", number)
		}
	}
}
