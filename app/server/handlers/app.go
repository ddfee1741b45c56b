package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-site-console/app/server/cleanup"
	"school-site-console/app/server/jwt"
)

// ObjectStore is what the handlers need from the asset store.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string, upsert bool) error
	PublicURL(key string) string
	SignedURL(ctx context.Context, key string, ttl time.Duration) *string
	Remove(ctx context.Context, keys []string)
	ExtractKey(raw string) string
}

type App struct {
	l       *zap.Logger
	db      *gorm.DB
	jwt     *jwt.JWT
	store   ObjectStore
	cleanup *cleanup.Queue

	isProd    bool // controls the Secure cookie flag
	signReads bool // serve school-detail assets through signed URLs
}

func NewApp(l *zap.Logger, db *gorm.DB, j *jwt.JWT, store ObjectStore, cq *cleanup.Queue, isProd bool, signReads bool) *App {
	return &App{
		l:       l,
		db:      db,
		jwt:     j,
		store:   store,
		cleanup: cq,

		isProd:    isProd,
		signReads: signReads,
	}
}

// scheduleCleanup hands superseded object keys to the durable queue. When the
// queue is unreachable it falls back to an inline best-effort delete so the
// object at least has a chance of going away.
func (a *App) scheduleCleanup(ctx context.Context, keys ...string) {
	live := keys[:0]
	for _, key := range keys {
		if key != "" {
			live = append(live, key)
		}
	}
	if len(live) == 0 {
		return
	}

	if err := a.cleanup.Enqueue(ctx, live...); err != nil {
		a.l.Warn("failed to enqueue asset cleanup, deleting inline", zap.Strings("keys", live), zap.Error(err))
		a.store.Remove(ctx, live)
	}
}
