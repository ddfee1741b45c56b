package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"school-site-console/app/server/constants"
)

// ErrEmpty means the queue had nothing within the poll timeout.
var ErrEmpty = errors.New("cleanup queue is empty")

// Intent is a durable request to delete one superseded object. Enqueued by
// the server after the row write commits, consumed by the sweeper. Deletes
// are idempotent, so an intent can be retried safely.
type Intent struct {
	Key        string    `json:"key"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Attempts   int       `json:"attempts"`
}

type Queue struct {
	rdb *redis.Client
	l   *zap.Logger
}

func NewQueue(rdb *redis.Client, l *zap.Logger) *Queue {
	return &Queue{rdb: rdb, l: l}
}

// Enqueue records deletion intents for the given keys. The caller decides
// what to do when the queue itself is unreachable.
func (q *Queue) Enqueue(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if key == "" {
			continue
		}

		payload, err := json.Marshal(&Intent{
			Key:        key,
			EnqueuedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal cleanup intent: %w", err)
		}

		if err := q.rdb.LPush(ctx, constants.CleanupQueueKey, payload).Err(); err != nil {
			return fmt.Errorf("failed to enqueue cleanup intent for %s: %w", key, err)
		}
	}

	return nil
}

// Dequeue blocks for up to timeout waiting for the next intent.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Intent, error) {
	res, err := q.rdb.BRPop(ctx, timeout, constants.CleanupQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("failed to pop cleanup intent: %w", err)
	}

	// BRPop returns [key, value]
	var intent Intent
	if err := json.Unmarshal([]byte(res[1]), &intent); err != nil {
		// Unreadable payload, drop it rather than loop on it forever
		q.l.Error("failed to unmarshal cleanup intent", zap.String("payload", res[1]), zap.Error(err))
		return nil, ErrEmpty
	}

	return &intent, nil
}

// Requeue puts a failed intent back with its attempt counter bumped. Gives up
// past the retry cap.
func (q *Queue) Requeue(ctx context.Context, intent *Intent) {
	intent.Attempts++
	if intent.Attempts >= constants.CleanupMaxAttempts {
		q.l.Error("dropping cleanup intent after too many attempts",
			zap.String("key", intent.Key),
			zap.Int("attempts", intent.Attempts),
		)
		return
	}

	payload, err := json.Marshal(intent)
	if err != nil {
		q.l.Error("failed to marshal cleanup intent", zap.String("key", intent.Key), zap.Error(err))
		return
	}

	if err := q.rdb.LPush(ctx, constants.CleanupQueueKey, payload).Err(); err != nil {
		q.l.Error("failed to requeue cleanup intent", zap.String("key", intent.Key), zap.Error(err))
	}
}
