package analytics

import (
	"time"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
	"github.com/Altaaaf/Proxy-Checker/internal/parser"
)

// Compute aggregates batch statistics from per-proxy outcomes and the
// parse-time drop counts. Average latency covers alive proxies only.
func Compute(outcomes []model.CheckOutcome, parseStats parser.Stats, totalDuration time.Duration) model.BatchStats {
	stats := model.BatchStats{
		TotalProxies:          len(outcomes),
		MalformedLines:        parseStats.Malformed,
		DuplicateLines:        parseStats.Duplicates,
		TotalProcessingTimeMs: totalDuration.Milliseconds(),
	}

	var latencySum int64
	for _, o := range outcomes {
		switch o.Status {
		case model.StatusAlive:
			stats.AliveProxies++
			latencySum += o.Elapsed.Milliseconds()
		case model.StatusDead:
			stats.DeadProxies++
		case model.StatusTimedOut:
			stats.TimedOutProxies++
		}
	}

	if stats.AliveProxies > 0 {
		stats.AvgLatencyMs = float64(latencySum) / float64(stats.AliveProxies)
	}
	if stats.TotalProxies > 0 {
		stats.SuccessRatePct = float64(stats.AliveProxies) / float64(stats.TotalProxies) * 100.0
	}
	if minutes := totalDuration.Minutes(); minutes > 0 {
		stats.CheckedPerMinute = float64(stats.TotalProxies) / minutes
	}

	return stats
}
