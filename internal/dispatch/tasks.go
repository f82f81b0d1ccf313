package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ipakeev/words-fan-bot/internal/config"
)

// Tasks runs deferred one-shot operations. A task cancelled before its
// delay elapses never executes; once running, cancellation is
// cooperative through the op's context.
type Tasks struct {
	sweepInterval time.Duration
	log           *slog.Logger
	warnErrs      []error

	mu     sync.Mutex
	tasks  map[string]*task
	closed bool

	wg        sync.WaitGroup
	stopSweep chan struct{}
	sweepDone chan struct{}
}

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTasks creates a Tasks scheduler and starts its sweep loop.
func NewTasks(cfg config.DispatchConfig, logger *slog.Logger, warnErrs ...error) *Tasks {
	t := &Tasks{
		sweepInterval: cfg.TaskSweep,
		log:           logger.With("component", "tasks"),
		warnErrs:      warnErrs,
		tasks:         make(map[string]*task),
		stopSweep:     make(chan struct{}),
		sweepDone:     make(chan struct{}),
	}
	go t.sweepLoop()
	return t
}

// Schedule runs op after delay and returns the task id for Cancel.
// A zero delay runs the op immediately.
func (t *Tasks) Schedule(op Op, delay time.Duration) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()
	if t.closed {
		t.log.Warn("schedule after shutdown dropped", slog.String("task_id", id))
		return id
	}

	ctx, cancel := context.WithCancel(context.Background())
	tk := &task{cancel: cancel, done: make(chan struct{})}
	t.tasks[id] = tk

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(tk.done)
		defer cancel()

		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return
		}
		t.execute(ctx, id, op)
	}()

	return id
}

func (t *Tasks) execute(ctx context.Context, id string, op Op) {
	err := op(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	for _, warnErr := range t.warnErrs {
		if errors.Is(err, warnErr) {
			t.log.Warn("task skipped", slog.String("task_id", id), slog.String("error", err.Error()))
			return
		}
	}
	t.log.Error("task failed", slog.String("task_id", id), slog.String("error", err.Error()))
}

// Cancel cancels the task. Unknown or finished ids are a no-op.
func (t *Tasks) Cancel(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk, ok := t.tasks[id]; ok {
		tk.cancel()
	}
}

func (t *Tasks) sweepLoop() {
	defer close(t.sweepDone)
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopSweep:
			return
		case <-ticker.C:
			t.sweepFinished()
		}
	}
}

// sweepFinished drops bookkeeping for tasks that have already run or
// been cancelled.
func (t *Tasks) sweepFinished() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, tk := range t.tasks {
		select {
		case <-tk.done:
			delete(t.tasks, id)
		default:
		}
	}
}

// Shutdown stops intake, waits for pending and running tasks and joins
// the sweep loop.
func (t *Tasks) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.stopSweep)
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		<-t.sweepDone
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// taskCount reports the number of tracked tasks. Used by tests.
func (t *Tasks) taskCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}
