package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/WiseCart620/wisecartfrontend-sub001/internal/jobs"
)

// CatalogWarmer refills the catalog cache.
type CatalogWarmer interface {
	Warm(ctx context.Context) (int, error)
}

// CatalogWarmupJob pre-populates supplier and product lists so the first
// screen load after a deploy or cache flush does not hit the backend cold.
type CatalogWarmupJob struct {
	Catalog CatalogWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes catalog warm-up tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Catalog == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload CatalogWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Reason == "" {
		payload.Reason = "scheduled"
	}

	tracker := j.Metrics.Track(TaskCatalogWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	entries, err := j.Catalog.Warm(ctx)
	if err != nil {
		logger.Error("catalog warmup failed", slog.Any("error", err))
		return err
	}
	j.Metrics.AddProcessed(TaskCatalogWarmup, entries)
	logger.Info("catalog warmup completed", slog.Int("entries", entries))
	return nil
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
