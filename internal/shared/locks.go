package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RecordLockKey builds redis keys guarding mutations of one procurement record.
func RecordLockKey(entity string, id int64) string {
	return fmt.Sprintf("procurement:%s:%d:lock", entity, id)
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ActionLocker hands out short-lived exclusive locks so overlapping actions on
// the same record are refused instead of interleaved.
type ActionLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewActionLocker constructs a locker. A nil client disables locking.
func NewActionLocker(client *redis.Client, ttl time.Duration) *ActionLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ActionLocker{client: client, ttl: ttl}
}

// Acquire takes the lock for key or fails with ErrActionInProgress.
func (l *ActionLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil || l.client == nil {
		return func() {}, nil
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrActionInProgress
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}, nil
}
