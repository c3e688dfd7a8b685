// Package outbox runs side effects (notifications, audit records,
// event publishes) off the request's critical path. Jobs execute after
// the primary mutation has committed, on a detached context with their
// own timeout; a failed job is logged and never retried or surfaced to
// the caller.
package outbox

import (
	"context"
	"sync"
	"time"

	"venuebook/pkg/logger"
)

type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type Queue interface {
	Enqueue(job Job)
	Stop()
}

type AsyncQueue struct {
	jobs    chan Job
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
	once    sync.Once
}

func NewAsyncQueue(size int, timeout time.Duration, log *logger.Logger) *AsyncQueue {
	q := &AsyncQueue{
		jobs:    make(chan Job, size),
		timeout: timeout,
		log:     log,
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue never blocks the caller. A full queue drops the job, which
// keeps the best-effort contract: the primary mutation has already
// committed and must not be held up by side-effect backpressure.
func (q *AsyncQueue) Enqueue(job Job) {
	select {
	case q.jobs <- job:
	default:
		q.log.Warn("Outbox queue full, dropping side effect", "job", job.Name)
	}
}

func (q *AsyncQueue) run() {
	defer q.wg.Done()
	for job := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := job.Run(ctx); err != nil {
			q.log.Error("Side effect failed", "job", job.Name, "error", err)
		}
		cancel()
	}
}

// Stop drains remaining jobs and waits for the worker to exit.
func (q *AsyncQueue) Stop() {
	q.once.Do(func() {
		close(q.jobs)
	})
	q.wg.Wait()
}

// SyncQueue executes jobs inline. Used in tests where side-effect
// ordering must be deterministic.
type SyncQueue struct {
	log *logger.Logger
}

func NewSyncQueue(log *logger.Logger) *SyncQueue {
	return &SyncQueue{log: log}
}

func (q *SyncQueue) Enqueue(job Job) {
	if err := job.Run(context.Background()); err != nil {
		q.log.Error("Side effect failed", "job", job.Name, "error", err)
	}
}

func (q *SyncQueue) Stop() {}
