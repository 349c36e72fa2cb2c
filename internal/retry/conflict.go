// Package retry re-runs an atomic store update that lost a race.
package retry

import (
	"context"

	"github.com/cenkalti/backoff/v5"
	"recipeshare.me/recipes/internal/exceptions"
)

// ConflictAttempts is the total number of tries, so one internal retry.
const ConflictAttempts = 2

// OnConflict runs op and retries it once when it reports a Conflict.
// Any other error is returned immediately.
func OnConflict[T any](ctx context.Context, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		result, err := op()
		if err != nil && !exceptions.IsConflict(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}, backoff.WithBackOff(&backoff.ZeroBackOff{}), backoff.WithMaxTries(ConflictAttempts))
}
