package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"disease-detector/internal/common/redis"
)

// DefaultSnapshotKey holds the latest performance snapshot in Redis.
const DefaultSnapshotKey = "disease-detector:performance"

// Reporter periodically publishes a performance snapshot to the log and,
// when a Redis client is set, to a Redis key.
type Reporter struct {
	cron         *cron.Cron
	collector    *Collector
	modelsLoaded func() int
	client       *redis.Client
	key          string
	ttl          time.Duration
	logger       *zap.Logger
}

// NewReporter client may be nil.
func NewReporter(collector *Collector, modelsLoaded func() int, client *redis.Client, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if modelsLoaded == nil {
		modelsLoaded = func() int { return 0 }
	}
	return &Reporter{
		cron:         cron.New(),
		collector:    collector,
		modelsLoaded: modelsLoaded,
		client:       client,
		key:          DefaultSnapshotKey,
		ttl:          24 * time.Hour,
		logger:       logger,
	}
}

// Start schedules the snapshot job with a standard cron spec or descriptor
// such as "@every 1m" and starts the scheduler.
func (r *Reporter) Start(spec string) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}
	r.cron.Schedule(schedule, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Publish(ctx); err != nil {
			r.logger.Warn("Failed to publish performance snapshot", zap.Error(err))
		}
	}))
	r.cron.Start()
	r.logger.Info("Performance reporter started", zap.String("schedule", spec))
	return nil
}

// Stop waits for a running job to finish.
func (r *Reporter) Stop() {
	<-r.cron.Stop().Done()
}

// Publish writes one snapshot now.
func (r *Reporter) Publish(ctx context.Context) error {
	snap := r.collector.Snapshot(r.modelsLoaded())
	r.logger.Info("Performance snapshot",
		zap.Int64("total_predictions", snap.TotalPredictions),
		zap.Float64("success_rate", snap.SuccessRate),
		zap.Float64("average_confidence", snap.AverageConfidence),
		zap.Float64("average_response_time_ms", snap.AverageResponseTimeMS),
		zap.Int("models_loaded", snap.ModelsLoaded),
	)

	if r.client == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot in %s: %w", r.key, err)
	}
	return nil
}
