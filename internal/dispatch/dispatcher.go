// Package dispatch serializes handler execution per user and runs
// deferred one-shot tasks. Every chat update for a user runs on that
// user's own queue, so two updates from the same user never interleave
// while different users proceed concurrently.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/config"
	"github.com/ipakeev/words-fan-bot/pkg/ctxutil"
)

// Op is a unit of work executed by a worker or a deferred task.
type Op func(ctx context.Context) error

// Dispatcher owns one serial worker per active user. Workers are
// created lazily on first submit and reaped by a sweep loop once idle.
type Dispatcher struct {
	queueSize     int
	sweepInterval time.Duration
	log           *slog.Logger
	warnErrs      []error

	mu      sync.Mutex
	workers map[int64]*worker
	closed  bool

	wg        sync.WaitGroup
	stopSweep chan struct{}
	sweepDone chan struct{}
}

type worker struct {
	ch chan Op

	// pending counts ops handed to this worker that have not finished
	// executing yet. Incremented in Submit under the dispatcher mutex,
	// decremented by the worker after the op returns. The sweep reaps
	// only at zero, so a worker between channel receive and op
	// completion is never closed out from under an op.
	pending atomic.Int64
}

// NewDispatcher creates a Dispatcher and starts its sweep loop.
// Errors matching one of warnErrs are logged at warn level instead of
// error; either way the worker moves on to the next op.
func NewDispatcher(cfg config.DispatchConfig, logger *slog.Logger, warnErrs ...error) *Dispatcher {
	d := &Dispatcher{
		queueSize:     cfg.QueueSize,
		sweepInterval: cfg.WorkerSweep,
		log:           logger.With("component", "dispatcher"),
		warnErrs:      warnErrs,
		workers:       make(map[int64]*worker),
		stopSweep:     make(chan struct{}),
		sweepDone:     make(chan struct{}),
	}
	go d.sweepLoop()
	return d
}

// Submit enqueues op on the user's queue, creating the worker if
// needed. Ops of one user run strictly in submission order. After
// Shutdown the op is dropped with a warning.
func (d *Dispatcher) Submit(userID int64, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.log.Warn("submit after shutdown dropped", slog.Int64("user_id", userID))
		return
	}

	w, ok := d.workers[userID]
	if !ok {
		w = &worker{ch: make(chan Op, d.queueSize)}
		d.workers[userID] = w
		d.wg.Add(1)
		go d.runWorker(userID, w)
	}

	// The increment happens under the mutex before the send, so the
	// sweep can never observe zero while a submit is in flight.
	w.pending.Add(1)

	// A full queue blocks the submitter; the worker keeps draining
	// without taking the mutex, so this always makes progress.
	w.ch <- op
}

func (d *Dispatcher) runWorker(userID int64, w *worker) {
	defer d.wg.Done()
	for {
		op, ok := <-w.ch
		if !ok {
			return
		}
		d.execute(userID, op)
		w.pending.Add(-1)
	}
}

// execute runs a single op with the queue owner tagged into its
// context. A failure never takes the worker down.
func (d *Dispatcher) execute(userID int64, op Op) {
	err := op(ctxutil.WithUserID(context.Background(), userID))
	if err == nil {
		return
	}
	for _, warnErr := range d.warnErrs {
		if errors.Is(err, warnErr) {
			d.log.Warn("op skipped", slog.Int64("user_id", userID), slog.String("error", err.Error()))
			return
		}
	}
	d.log.Error("op failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
}

func (d *Dispatcher) sweepLoop() {
	defer close(d.sweepDone)
	ticker := time.NewTicker(d.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopSweep:
			return
		case <-ticker.C:
			d.reapIdle()
		}
	}
}

// reapIdle closes workers with no pending ops. pending only drops to
// zero after the last op has finished, and submits increment it under
// the same mutex held here, so a worker observed at zero is parked on
// the receive with an empty queue. A later Submit simply creates a
// fresh worker.
func (d *Dispatcher) reapIdle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	for userID, w := range d.workers {
		if w.pending.Load() == 0 {
			close(w.ch)
			delete(d.workers, userID)
		}
	}
}

// Shutdown stops intake, lets every worker drain its queue to
// completion and joins them together with the sweep loop. It returns
// early with the context error if draining takes too long.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.stopSweep)
	for userID, w := range d.workers {
		close(w.ch)
		delete(d.workers, userID)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		<-d.sweepDone
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// workerCount reports the number of live workers. Used by tests and
// the sweep.
func (d *Dispatcher) workerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workers)
}
