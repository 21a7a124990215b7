package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolExecutesJobs(t *testing.T) {
	pool := NewWorkerPool(3, 6)
	defer pool.Close()

	if pool.Size() != 3 {
		t.Fatalf("expected 3 workers, got %d", pool.Size())
	}

	var count int32
	for i := 0; i < 10; i++ {
		if err := pool.Submit(context.Background(), func() {
			atomic.AddInt32(&count, 1)
		}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	pool.Close()
	pool.Wait()

	if got := atomic.LoadInt32(&count); got != 10 {
		t.Fatalf("expected 10 jobs executed, got %d", got)
	}
}

func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	pool.Close()
	if err := pool.Submit(context.Background(), func() {}); err != ErrWorkerPoolClosed {
		t.Fatalf("expected ErrWorkerPoolClosed, got %v", err)
	}
}

func TestTaskGroupRunsAll(t *testing.T) {
	group := NewTaskGroup(context.Background(), 2, 8)

	var count int32
	for i := 0; i < 8; i++ {
		if err := group.Go(func(context.Context) error {
			atomic.AddInt32(&count, 1)
			return nil
		}); err != nil {
			t.Fatalf("go failed: %v", err)
		}
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&count); got != 8 {
		t.Fatalf("expected 8 tasks, got %d", got)
	}
}

func TestTaskGroupFirstErrorCancelsRest(t *testing.T) {
	boom := errors.New("boom")
	group := NewTaskGroup(context.Background(), 1, 4)

	var ran int32
	_ = group.Go(func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return boom
	})
	for i := 0; i < 3; i++ {
		_ = group.Go(func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
	}

	if err := group.Wait(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := atomic.LoadInt32(&ran); got != 1 {
		t.Fatalf("expected later tasks to be skipped, %d ran", got)
	}
}

func TestTaskGroupParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	group := NewTaskGroup(ctx, 1, 1)

	started := make(chan struct{})
	_ = group.Go(func(ctx context.Context) error {
		close(started)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})
	<-started
	cancel()

	if err := group.Wait(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
