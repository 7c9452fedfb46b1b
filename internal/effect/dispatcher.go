// Package effect runs the side effects requested by node evaluations outside
// the session loop and hands their results back to it.
package effect

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/specialistvlad/stitchgrid/internal/ctxlog"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
)

// ErrNoHandler is returned by Dispatch for effect kinds nobody handles.
var ErrNoHandler = errors.New("no handler for effect kind")

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("dispatcher closed")

// Handler performs one kind of effect.
type Handler interface {
	Handle(ctx context.Context, eff eval.Effect) (portvalue.Value, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, eff eval.Effect) (portvalue.Value, error)

func (f HandlerFunc) Handle(ctx context.Context, eff eval.Effect) (portvalue.Value, error) {
	return f(ctx, eff)
}

// Dispatcher runs effects concurrently, at most Workers at a time.
type Dispatcher struct {
	ctx    context.Context
	cancel context.CancelFunc

	sem      *semaphore.Weighted
	handlers map[eval.EffectKind]Handler
	results  chan eval.EffectResult

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher bound to ctx. The logger in ctx is used
// for handler failures.
func NewDispatcher(ctx context.Context, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Dispatcher{
		ctx:      ctx,
		cancel:   cancel,
		sem:      semaphore.NewWeighted(int64(workers)),
		handlers: make(map[eval.EffectKind]Handler),
		results:  make(chan eval.EffectResult, workers*4),
	}
}

// Handle registers h for kind, replacing any previous handler.
func (d *Dispatcher) Handle(kind eval.EffectKind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

// Results delivers the outcome of every dispatched effect. It is closed by
// Close.
func (d *Dispatcher) Results() <-chan eval.EffectResult {
	return d.results
}

// Dispatch starts eff in the background. It never blocks on the handler.
func (d *Dispatcher) Dispatch(eff eval.Effect) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	h, ok := d.handlers[eff.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, eff.Kind)
	}

	d.wg.Add(1)
	go d.run(h, eff)
	return nil
}

func (d *Dispatcher) run(h Handler, eff eval.Effect) {
	defer d.wg.Done()
	ctx := ctxlog.With(d.ctx, "node", eff.NodeID, "effect", string(eff.Kind), "frame", eff.Frame)
	logger := ctxlog.FromContext(ctx)

	if err := d.sem.Acquire(d.ctx, 1); err != nil {
		logger.Debug("Effect abandoned before start.", "error", err)
		return
	}
	defer d.sem.Release(1)

	logger.Debug("Effect started.")
	v, err := h.Handle(ctx, eff)
	if d.ctx.Err() != nil {
		logger.Debug("Effect result discarded on shutdown.")
		return
	}
	if err != nil {
		logger.Warn("Effect failed.", "error", err)
	}

	select {
	case d.results <- eval.EffectResult{Effect: eff, Value: v, Err: err}:
	case <-d.ctx.Done():
		logger.Debug("Effect result discarded on shutdown.")
	}
}

// Close cancels effects still in flight, waits for their goroutines and
// closes the results channel. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
	close(d.results)
}
