package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"school-site-console/app/server/cleanup"
	"school-site-console/app/server/constants"
	serverinits "school-site-console/app/server/inits"
	"school-site-console/app/server/storage"
	"school-site-console/app/sweeper/inits"
)

// The sweeper drains the asset-cleanup queue: deletion intents the server
// enqueued after replacing or removing a record's asset. Deletes are
// idempotent so a crashed or retried run never does harm, it just tries
// again.
func main() {
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	l, err := serverinits.Logger(!cfg.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}

	l.Debug("logger initialized")

	rdb, err := serverinits.Redis(cfg.RedisConnectionString)
	if err != nil {
		l.Fatal("error initializing Redis connection", zap.Error(err))
	}

	ctx := context.Background()

	store, err := storage.New(ctx, storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	}, l)
	if err != nil {
		l.Fatal("error initializing storage", zap.Error(err))
	}

	queue := cleanup.NewQueue(rdb, l)

	l.Info("sweeper started")

	for {
		intent, err := queue.Dequeue(ctx, constants.CleanupPopTimeout)
		if err != nil {
			if errors.Is(err, cleanup.ErrEmpty) {
				continue
			}
			l.Error("failed to dequeue cleanup intent", zap.Error(err))
			if errors.Is(err, redis.ErrClosed) {
				return
			}
			time.Sleep(time.Second)
			continue
		}

		if err := store.Delete(ctx, intent.Key); err != nil {
			l.Warn("failed to delete object, requeueing",
				zap.String("key", intent.Key),
				zap.Int("attempts", intent.Attempts),
				zap.Error(err),
			)
			queue.Requeue(ctx, intent)
			continue
		}

		l.Info("object reclaimed", zap.String("key", intent.Key))
	}
}
