package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

// Pinger is implemented by every result store backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorStoreHealth checks the store immediately and then on every tick,
// recording the outcome in healthy until ctx is done.
func MonitorStoreHealth(ctx context.Context, store Pinger, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check(ctx, store, healthy)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check(ctx, store, healthy)
		}
	}
}

func check(ctx context.Context, store Pinger, healthy *atomic.Bool) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := store.Ping(pingCtx)
	wasHealthy := healthy.Swap(err == nil)
	switch {
	case err != nil && wasHealthy:
		slog.Warn("[HealthCheck] Result store is unhealthy", slog.String("error", err.Error()))
	case err == nil && !wasHealthy:
		slog.Info("[HealthCheck] Result store is healthy")
	}
}
