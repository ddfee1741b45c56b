package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"school-site-console/app/server/constants"
)

func testQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewQueue(rdb, zap.NewNop()), mr
}

func TestEnqueueDequeue(t *testing.T) {
	q, _ := testQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "histories/old.png", "principals/old.jpg"))

	first, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "histories/old.png", first.Key)
	assert.Equal(t, 0, first.Attempts)
	assert.False(t, first.EnqueuedAt.IsZero())

	second, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "principals/old.jpg", second.Key)
}

func TestEnqueueSkipsEmptyKeys(t *testing.T) {
	q, mr := testQueue(t)

	require.NoError(t, q.Enqueue(context.Background(), "", ""))
	assert.False(t, mr.Exists(constants.CleanupQueueKey))
}

func TestRequeueBumpsAttempts(t *testing.T) {
	q, _ := testQueue(t)
	ctx := context.Background()

	q.Requeue(ctx, &Intent{Key: "histories/stuck.png", EnqueuedAt: time.Now()})

	intent, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "histories/stuck.png", intent.Key)
	assert.Equal(t, 1, intent.Attempts)
}

func TestRequeueDropsAfterMaxAttempts(t *testing.T) {
	q, mr := testQueue(t)

	q.Requeue(context.Background(), &Intent{
		Key:      "histories/hopeless.png",
		Attempts: constants.CleanupMaxAttempts - 1,
	})

	assert.False(t, mr.Exists(constants.CleanupQueueKey))
}
