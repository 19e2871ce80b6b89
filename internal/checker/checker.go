// Package checker runs retry-wrapped proxy checks across a batch with
// a bounded number of checks in flight.
package checker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Altaaaf/Proxy-Checker/internal/dialer"
	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// RunBatch checks every record in the batch through d with at most
// cfg.MaxTasks checks running at once. A worker slot is held for the
// full duration of a check, retries included, so a slow proxy never
// blocks more than its own slot.
//
// When ctx is cancelled no further checks are admitted and in-flight
// checks abort; outcomes recorded before the cancellation stay in the
// returned set. RunBatch returns only after every admitted worker has
// finished.
func RunBatch(ctx context.Context, batch []model.ProxyRecord, d dialer.Dialer, cfg model.Config, log zerolog.Logger) *ResultSet {
	results := NewResultSet(len(batch))
	sem := make(chan struct{}, cfg.MaxTasks)
	var wg sync.WaitGroup

admission:
	for i, rec := range batch {
		// Cancellation wins over a free worker slot: a two-case select
		// with both channels ready picks at random.
		if ctx.Err() != nil {
			log.Warn().
				Int("pending", len(batch)-i).
				Msg("run cancelled, no further checks admitted")
			break admission
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			log.Warn().
				Int("pending", len(batch)-i).
				Msg("run cancelled, no further checks admitted")
			break admission
		}

		wg.Add(1)
		go func(rec model.ProxyRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			out, err := Check(ctx, d, rec, cfg)
			if err != nil {
				log.Debug().Str("proxy", rec.Addr()).Msg("check abandoned")
				return
			}
			results.Add(out)
			log.Debug().
				Str("proxy", rec.Addr()).
				Str("status", string(out.Status)).
				Int("attempts", out.Attempts).
				Int64("elapsed_ms", out.Elapsed.Milliseconds()).
				Msg("check finished")
		}(rec)
	}

	wg.Wait()
	return results
}
