// Package jobs runs the background tasks that keep the procurement front end
// warm and tidy: catalog cache warm-up and idempotency key cleanup.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every task is routed to.
	QueueDefault = "default"
	// TaskCatalogWarmup reloads supplier and product lists into the cache.
	TaskCatalogWarmup = "catalog:warmup"
	// TaskIdempotencyCleanup purges expired payment idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// CatalogWarmupPayload describes why a warm-up was requested.
type CatalogWarmupPayload struct {
	Reason string `json:"reason"`
}

// IdempotencyCleanupPayload carries the retention window for cleanup runs.
type IdempotencyCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewCatalogWarmupTask constructs a catalog warm-up task.
func NewCatalogWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(CatalogWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}

// NewIdempotencyCleanupTask constructs a cleanup task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
