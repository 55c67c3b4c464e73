// Package worker runs event loop tasks one at a time.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/okian/fairway/internal/adapters/mq/queue"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// Queue defines how the worker receives tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Worker drains a queue.
type Worker interface {
	// Run processes tasks until ctx is canceled or the queue is closed and drained.
	Run(ctx context.Context)

	// Shutdown stops accepting work, lets queued tasks finish and waits for Run to return.
	Shutdown(ctx context.Context) error
}

// Serial runs tasks strictly one after another. A failing or panicking task
// is logged and the loop moves on.
type Serial struct {
	queue  Queue
	name   string
	logger logger.Logger

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	mu        sync.Mutex
	processed int64
	failed    int64
	lastRun   time.Time
}

// New creates a serial worker over q.
func New(q Queue, opts ...Option) *Serial {
	w := &Serial{
		queue:    q,
		name:     "loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the loop.
func (w *Serial) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			w.process(ctx, t)
		}
	}
}

// Shutdown closes the queue when it can be closed, so queued tasks drain
// before Run returns; otherwise the loop is stopped directly.
func (w *Serial) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() {
		if closer, ok := w.queue.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				w.logger.Error(ctx, "error closing queue", logger.Error(err))
			}
			return
		}
		close(w.shutdown)
	})

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Stats is a snapshot of loop activity.
type Stats struct {
	Processed int64
	Failed    int64
	LastRun   time.Time
}

// Stats returns counters for the health endpoint.
func (w *Serial) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{Processed: w.processed, Failed: w.failed, LastRun: w.lastRun}
}

func (w *Serial) process(ctx context.Context, t queue.Task) {
	start := time.Now()
	err := w.runSafely(ctx, t)
	elapsed := time.Since(start)

	w.mu.Lock()
	w.processed++
	w.lastRun = start
	if err != nil {
		w.failed++
	}
	w.mu.Unlock()

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		w.logger.Error(ctx, "task failed",
			logger.String("task", t.Name),
			logger.String("task_id", t.ID),
			logger.Error(err),
		)
	} else {
		w.logger.Debug(ctx, "task done",
			logger.String("task", t.Name),
			logger.Duration("took", elapsed),
			logger.Duration("waited", start.Sub(t.EnqueuedAt)),
		)
	}
	metrics.RecordLoopTask(outcome, float64(elapsed.Milliseconds()))
}

func (w *Serial) runSafely(ctx context.Context, t queue.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v\n%s", t.Name, r, debug.Stack())
		}
	}()
	return t.Run(ctx)
}
