package outbox

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"venuebook/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func TestAsyncQueue_RunsJobsAndStops(t *testing.T) {
	q := NewAsyncQueue(16, time.Second, testLogger())

	var ran int32
	for i := 0; i < 5; i++ {
		q.Enqueue(Job{
			Name: "count",
			Run: func(ctx context.Context) error {
				atomic.AddInt32(&ran, 1)
				return nil
			},
		})
	}

	q.Stop()

	if got := atomic.LoadInt32(&ran); got != 5 {
		t.Errorf("expected 5 jobs to run, got %d", got)
	}
}

func TestAsyncQueue_FailedJobDoesNotStopWorker(t *testing.T) {
	q := NewAsyncQueue(16, time.Second, testLogger())

	var ran int32
	q.Enqueue(Job{
		Name: "failing",
		Run: func(ctx context.Context) error {
			return errors.New("boom")
		},
	})
	q.Enqueue(Job{
		Name: "after-failure",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		},
	})

	q.Stop()

	if atomic.LoadInt32(&ran) != 1 {
		t.Error("job after a failed job did not run")
	}
}

func TestAsyncQueue_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	q := NewAsyncQueue(1, time.Second, testLogger())
	block := make(chan struct{})

	q.Enqueue(Job{Name: "blocker", Run: func(ctx context.Context) error {
		<-block
		return nil
	}})
	// Fill the buffer, then overflow it; Enqueue must return promptly.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			q.Enqueue(Job{Name: "overflow", Run: func(ctx context.Context) error { return nil }})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(block)
	q.Stop()
}

func TestSyncQueue_RunsInline(t *testing.T) {
	q := NewSyncQueue(testLogger())

	ran := false
	q.Enqueue(Job{Name: "inline", Run: func(ctx context.Context) error {
		ran = true
		return nil
	}})

	if !ran {
		t.Error("sync queue did not run job inline")
	}
}
