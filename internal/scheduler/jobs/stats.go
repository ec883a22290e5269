package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/fixconv/pkg/logger"
	"github.com/wonny/fixconv/pkg/metrics"
)

// StatsJob logs the traffic counters and how much they moved since the last run
type StatsJob struct {
	metrics  *metrics.Metrics
	logger   *logger.Logger
	schedule string

	mu   sync.Mutex
	last metrics.Snapshot
}

// NewStatsJob creates a new stats job
func NewStatsJob(m *metrics.Metrics, log *logger.Logger, schedule string) *StatsJob {
	return &StatsJob{
		metrics:  m,
		logger:   log,
		schedule: schedule,
	}
}

// Name returns the job name
func (j *StatsJob) Name() string {
	return "stats"
}

// Schedule returns the cron schedule
func (j *StatsJob) Schedule() string {
	return j.schedule
}

// Run logs the current snapshot
func (j *StatsJob) Run(ctx context.Context) error {
	snap, err := j.metrics.Snapshot()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	delta := j.advance(snap)

	j.logger.WithFields(map[string]interface{}{
		"encoded":         snap.Encoded,
		"explained":       snap.Explained,
		"explain_errors":  snap.ExplainErrors,
		"rate_limited":    snap.RateLimited,
		"encoded_delta":   delta.Encoded,
		"explained_delta": delta.Explained,
	}).Info("Traffic stats")

	return nil
}

// advance stores snap and returns the change since the previous run
func (j *StatsJob) advance(snap metrics.Snapshot) metrics.Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	delta := metrics.Snapshot{
		Encoded:       snap.Encoded - j.last.Encoded,
		Explained:     snap.Explained - j.last.Explained,
		ExplainErrors: snap.ExplainErrors - j.last.ExplainErrors,
		RateLimited:   snap.RateLimited - j.last.RateLimited,
	}
	j.last = snap
	return delta
}
