package program

import (
	"context"
	"errors"
	"time"

	"raffle/internal/logger"
	"raffle/internal/storage"

	"go.uber.org/zap"
)

const conflictBackoff = 5 * time.Millisecond

type Func[T any] func() (T, error)

// retryOnConflict repeats fn while storage reports a lost optimistic race, up to attempts times.
func retryOnConflict[T any](ctx context.Context, attempts int, fn Func[T]) (T, error) {
	for attempt := 1; ; attempt++ {
		result, err := fn()
		if !errors.Is(err, storage.ErrConflict) || attempt >= attempts {
			return result, err
		}

		logger.Debug("storage conflict, retrying...", zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(time.Duration(attempt) * conflictBackoff):
		}
	}
}
