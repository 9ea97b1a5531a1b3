package materialize

import (
	"context"

	"github.com/cenkalti/backoff/v5"
)

// Retry runs op until it returns nil, at most retries+1 times, without
// waiting between attempts. op receives the 1-based attempt number.
// Returning backoff.Permanent(err) from op stops immediately with err.
// Retry reports how many attempts were made.
func Retry(ctx context.Context, retries int, op func(attempt int) error) (int, error) {
	if retries < 0 {
		retries = 0
	}
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, op(attempt)
	},
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(uint(retries+1)),
		backoff.WithMaxElapsedTime(0),
	)
	return attempt, err
}
