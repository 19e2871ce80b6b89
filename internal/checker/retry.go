package checker

import (
	"context"
	"time"

	"github.com/Altaaaf/Proxy-Checker/internal/dialer"
	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// Check resolves a single proxy. It drives dial attempts under the
// per-attempt deadline and retries only timed-out attempts, waiting
// cfg.RetryDelay between them, up to cfg.MaxRetries extra attempts.
// A refusal ends the check immediately; a success short-circuits.
//
// The returned error is non-nil only when the surrounding run was
// cancelled before this proxy resolved; no outcome is produced then.
func Check(ctx context.Context, d dialer.Dialer, rec model.ProxyRecord, cfg model.Config) (model.CheckOutcome, error) {
	start := time.Now()
	maxAttempts := cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
		verdict, err := d.Attempt(attemptCtx, rec)
		cancel()

		// A cancelled run abandons the check entirely; even a verdict
		// that raced the cancellation is not recorded.
		if ctx.Err() != nil {
			return model.CheckOutcome{}, ctx.Err()
		}
		lastErr = err

		switch verdict {
		case dialer.Success:
			return outcome(rec, model.StatusAlive, attempt, start, nil), nil
		case dialer.Failure:
			return outcome(rec, model.StatusDead, attempt, start, err), nil
		case dialer.Timeout:
			if attempt == maxAttempts {
				continue
			}
			select {
			case <-ctx.Done():
				return model.CheckOutcome{}, ctx.Err()
			case <-time.After(cfg.RetryDelay()):
			}
		}
	}

	return outcome(rec, model.StatusTimedOut, maxAttempts, start, lastErr), nil
}

func outcome(rec model.ProxyRecord, status model.Status, attempts int, start time.Time, err error) model.CheckOutcome {
	out := model.CheckOutcome{
		Record:   rec,
		Status:   status,
		Attempts: attempts,
		Elapsed:  time.Since(start),
	}
	if err != nil {
		out.Err = err.Error()
	}
	return out
}
