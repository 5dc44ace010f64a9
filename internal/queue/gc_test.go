package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockDLQPurger struct {
	purgeFunc func(ctx context.Context, retention time.Duration) (int, error)
}

func (m *mockDLQPurger) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	if m.purgeFunc != nil {
		return m.purgeFunc(ctx, retention)
	}
	return 0, nil
}

func TestGarbageCollector_Collect_NilPurger(t *testing.T) {
	t.Parallel()
	gc := NewGarbageCollector(nil, time.Minute, 24*time.Hour)
	err := gc.collect(context.Background())
	if err != nil {
		t.Errorf("collect with nil purger: %v", err)
	}
}

func TestGarbageCollector_Collect_MockPurger(t *testing.T) {
	t.Parallel()
	var called atomic.Bool
	mock := &mockDLQPurger{
		purgeFunc: func(ctx context.Context, retention time.Duration) (int, error) {
			called.Store(true)
			if retention != 24*time.Hour {
				return 0, errors.New("unexpected retention")
			}
			return 3, nil
		},
	}
	gc := NewGarbageCollector(mock, time.Minute, 24*time.Hour)
	if err := gc.collect(context.Background()); err != nil {
		t.Errorf("collect: %v", err)
	}
	if !called.Load() {
		t.Error("Expected purger to be called")
	}
}

func TestGarbageCollector_Collect_PurgeError(t *testing.T) {
	t.Parallel()
	mock := &mockDLQPurger{
		purgeFunc: func(ctx context.Context, retention time.Duration) (int, error) {
			return 0, errors.New("broker unavailable")
		},
	}
	gc := NewGarbageCollector(mock, time.Minute, 24*time.Hour)
	if err := gc.collect(context.Background()); err == nil {
		t.Error("Expected error from failing purger")
	}
}

func TestGarbageCollector_Start_StopsOnCancel(t *testing.T) {
	t.Parallel()
	gc := NewGarbageCollector(&mockDLQPurger{}, 10*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- gc.Start(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("GC did not stop after cancel")
	}
}
