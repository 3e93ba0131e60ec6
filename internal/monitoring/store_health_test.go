package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flakyStore struct {
	failing atomic.Bool
	pings   atomic.Int32
}

func (f *flakyStore) Ping(context.Context) error {
	f.pings.Add(1)
	if f.failing.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestMonitorStoreHealth_TracksPings(t *testing.T) {
	store := &flakyStore{}
	var healthy atomic.Bool

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		MonitorStoreHealth(ctx, store, &healthy, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, healthy.Load, time.Second, time.Millisecond)

	store.failing.Store(true)
	assert.Eventually(t, func() bool { return !healthy.Load() }, time.Second, time.Millisecond)

	store.failing.Store(false)
	assert.Eventually(t, healthy.Load, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
	assert.GreaterOrEqual(t, store.pings.Load(), int32(3))
}
