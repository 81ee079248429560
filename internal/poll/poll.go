// Package poll provides a bounded retry-with-interval loop for waiting on
// eventually consistent remote state.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
)

// ErrTimeout is returned when every attempt ran without the condition holding
var ErrTimeout = errors.New("poll: attempts exhausted")

// errPending marks an attempt whose condition did not hold yet
var errPending = errors.New("poll: condition not met")

// Policy bounds a poll loop
type Policy struct {
	Interval time.Duration // wait between attempts
	Attempts uint          // hard cap on attempts
}

// Timeout is the worst-case wall time spent waiting between attempts
func (p Policy) Timeout() time.Duration {
	if p.Attempts == 0 {
		return 0
	}
	return time.Duration(p.Attempts-1) * p.Interval
}

// Result describes how a poll loop ended
type Result struct {
	Attempts uint // attempts made
}

// Check is one attempt, numbered from 0. It reports done when the condition
// holds. A returned error aborts the loop immediately.
type Check func(ctx context.Context, attempt uint) (done bool, err error)

// Until runs check up to p.Attempts times, waiting p.Interval between
// attempts, until it reports done. It returns ErrTimeout when the attempts are
// exhausted and the context error if ctx ends first.
func Until(ctx context.Context, p Policy, check Check) (Result, error) {
	if p.Attempts == 0 {
		return Result{}, fmt.Errorf("poll: attempts must be positive")
	}

	var (
		res   Result
		met   bool
		fatal error
	)
	err := retry.Retry(
		func(attempt uint) error {
			// retry numbers actions from 1
			res.Attempts = attempt
			done, err := check(ctx, attempt-1)
			if err != nil {
				fatal = err
				return nil
			}
			if !done {
				return errPending
			}
			met = true
			return nil
		},
		strategy.Limit(p.Attempts),
		waitWithContext(ctx, p.Interval),
	)

	switch {
	case fatal != nil:
		return res, fatal
	case met && err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, ctx.Err()
	default:
		return res, fmt.Errorf("%w after %d attempts", ErrTimeout, res.Attempts)
	}
}

// waitWithContext sleeps before every attempt but the first and stops the
// loop once ctx is done.
func waitWithContext(ctx context.Context, interval time.Duration) strategy.Strategy {
	return func(attempt uint) bool {
		if ctx.Err() != nil {
			return false
		}
		if attempt == 0 || interval <= 0 {
			return true
		}
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		}
	}
}
