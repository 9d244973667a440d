package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/validateiq/validateiq/internal/logger"
)

// ErrDispatcherClosed is returned by Flush after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// DefaultQueueSize bounds the telemetry backlog.
const DefaultQueueSize = 256

type job struct {
	name string
	fn   func(context.Context) error
}

// Dispatcher delivers best-effort telemetry on a single worker goroutine, in
// submission order. Callers never block: a full queue drops the job. Job
// errors are logged and swallowed.
type Dispatcher struct {
	log    *slog.Logger
	queue  chan job
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(log *slog.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		log:    log.With(logger.Scope("dispatch")),
		queue:  make(chan job, size),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		if err := j.fn(d.ctx); err != nil {
			d.log.Warn("telemetry delivery failed", slog.String("job", j.name), logger.Error(err))
		}
	}
}

// Go enqueues fn and reports whether it was accepted.
func (d *Dispatcher) Go(name string, fn func(context.Context) error) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Debug("dispatcher closed, dropping", slog.String("job", name))
		return false
	}

	select {
	case d.queue <- job{name: name, fn: fn}:
		return true
	default:
		d.log.Warn("telemetry queue full, dropping", slog.String("job", name))
		return false
	}
}

// Flush waits until every job accepted before the call has run.
func (d *Dispatcher) Flush(ctx context.Context) error {
	marker := make(chan struct{})
	enqueued := func() error {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.closed {
			return ErrDispatcherClosed
		}
		select {
		case d.queue <- job{name: "flush", fn: func(context.Context) error { close(marker); return nil }}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}()
	if enqueued != nil {
		return enqueued
	}

	select {
	case <-marker:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and drains the queue until ctx is done. Jobs
// still running at the deadline see their context cancelled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}
