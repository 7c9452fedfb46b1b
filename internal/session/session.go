// Package session drives an engine in real time. A Session owns the engine:
// every tick, edit and effect result goes through its goroutine.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/specialistvlad/stitchgrid/internal/ctxlog"
	"github.com/specialistvlad/stitchgrid/internal/effect"
	"github.com/specialistvlad/stitchgrid/internal/engine"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/graph"
	"github.com/specialistvlad/stitchgrid/internal/inmemorystore"
	"github.com/specialistvlad/stitchgrid/internal/nodestore"
	"github.com/specialistvlad/stitchgrid/internal/preview"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// DefaultFPS is the tick rate used when Options.FPS is not set.
const DefaultFPS = 60

// EffectObserver is told about every effect result the session handles.
type EffectObserver interface {
	EffectResolved(res eval.EffectResult, delivered bool)
}

// Options configure a Session. Zero values select defaults.
type Options struct {
	FPS float64
	// MaxFrames stops Run after that many ticks. Zero runs until the
	// context is cancelled.
	MaxFrames int
	Clock     engine.Clock
	// Dispatcher runs effects other than restart. Without one they are
	// logged and dropped.
	Dispatcher *effect.Dispatcher
	Store      nodestore.Store
	Sink       preview.Sink
	Observer   EffectObserver
}

type command struct {
	fn   func(*engine.Engine) error
	done chan error
}

// Session is a running prototype.
type Session struct {
	engine     *engine.Engine
	clock      engine.Clock
	limiter    *rate.Limiter
	maxFrames  int
	dispatcher *effect.Dispatcher
	store      nodestore.Store
	sink       preview.Sink
	observer   EffectObserver

	commands chan command
	done     chan struct{}
	once     sync.Once
	ticks    int
}

// New creates a session around eng and publishes the initial outputs of
// every node to the store.
func New(ctx context.Context, eng *engine.Engine, opts Options) *Session {
	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	s := &Session{
		engine:     eng,
		clock:      opts.Clock,
		limiter:    rate.NewLimiter(rate.Limit(fps), 1),
		maxFrames:  opts.MaxFrames,
		dispatcher: opts.Dispatcher,
		store:      opts.Store,
		sink:       opts.Sink,
		observer:   opts.Observer,
		commands:   make(chan command, 16),
		done:       make(chan struct{}),
	}
	if s.clock == nil {
		s.clock = engine.SystemClock{}
	}
	if s.store == nil {
		s.store = inmemorystore.New()
	}
	if s.sink == nil {
		s.sink = preview.Discard{}
	}
	s.publishAll(ctx)
	return s
}

// Store exposes the published outputs. It is safe for concurrent use.
func (s *Session) Store() nodestore.Store {
	return s.store
}

// Run ticks at the configured rate until ctx is cancelled, MaxFrames ticks
// have run, or the session is closed. Cancellation is not an error.
func (s *Session) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("▶️ Prototype session started", "fps", float64(s.limiter.Limit()), "nodes", s.engine.Graph().Len())
	defer func() { logger.Info("⏹️ Prototype session stopped", "ticks", s.ticks) }()

	for {
		if s.maxFrames > 0 && s.ticks >= s.maxFrames {
			return nil
		}
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-s.done:
			return ErrClosed
		default:
		}
		s.Step(ctx)
	}
}

// Step runs one iteration of the frame loop: queued edits, effect results,
// the tick itself, effect dispatch and publishing. Run calls it; tests call
// it directly.
func (s *Session) Step(ctx context.Context) engine.TickReport {
	logger := ctxlog.FromContext(ctx)

	if s.runCommands(logger) {
		s.syncStore(ctx, logger)
	}
	s.drainResults(logger)

	report := s.engine.Tick(s.clock.Now())
	s.ticks++

	restart := false
	for _, eff := range report.Effects {
		if err := s.sink.PublishEffect(ctx, preview.NewEffectEvent(eff)); err != nil {
			logger.Debug("Failed to publish effect.", "error", err)
		}
		switch {
		case eff.Kind == eval.EffectRestart:
			restart = true
		case s.dispatcher == nil:
			logger.Warn("No effect dispatcher configured, dropping effect.", "node", eff.NodeID, "effect", string(eff.Kind))
		default:
			if err := s.dispatcher.Dispatch(eff); err != nil {
				logger.Warn("Failed to dispatch effect.", "node", eff.NodeID, "effect", string(eff.Kind), "error", err)
			}
		}
	}

	if restart {
		s.engine.Restart()
		if err := s.store.Reset(ctx); err != nil {
			logger.Error("Failed to reset node store.", "error", err)
		}
		s.publishAll(ctx)
		return report
	}
	s.publish(ctx, logger, report)
	return report
}

// publish stores and relays the outputs of the nodes that changed.
func (s *Session) publish(ctx context.Context, logger *slog.Logger, report engine.TickReport) {
	if len(report.Changed) == 0 {
		return
	}
	snaps := make([]nodestore.Snapshot, 0, len(report.Changed))
	for _, id := range report.Changed {
		n, ok := s.engine.Node(id)
		if !ok {
			continue
		}
		snap := nodestore.Capture(n, report.Step.FrameCount, report.Step.GraphTime)
		if err := s.store.Put(ctx, snap); err != nil {
			logger.Error("Failed to store node outputs.", "node", id, "error", err)
		}
		snaps = append(snaps, snap)
	}
	frame := preview.NewFrame(report.Step.FrameCount, report.Step.GraphTime, snaps)
	if err := s.sink.PublishFrame(ctx, frame); err != nil {
		logger.Debug("Failed to publish frame.", "frame", frame.Frame, "error", err)
	}
}

// publishAll stores the current outputs of every node.
func (s *Session) publishAll(ctx context.Context) {
	step := s.engine.Step()
	for _, n := range s.engine.Graph().Nodes() {
		if err := s.store.Put(ctx, nodestore.Capture(n, step.FrameCount, step.GraphTime)); err != nil {
			ctxlog.FromContext(ctx).Error("Failed to store node outputs.", "node", n.ID, "error", err)
		}
	}
}

// syncStore drops snapshots of removed nodes and captures new ones.
func (s *Session) syncStore(ctx context.Context, logger *slog.Logger) {
	snaps, err := s.store.List(ctx)
	if err != nil {
		logger.Error("Failed to list node store.", "error", err)
		return
	}
	known := make(map[string]bool, len(snaps))
	for _, snap := range snaps {
		if _, ok := s.engine.Node(snap.ID); !ok {
			_ = s.store.Delete(ctx, snap.ID)
			continue
		}
		known[snap.ID] = true
	}
	step := s.engine.Step()
	for _, n := range s.engine.Graph().Nodes() {
		if !known[n.ID] {
			_ = s.store.Put(ctx, nodestore.Capture(n, step.FrameCount, step.GraphTime))
		}
	}
}

func (s *Session) runCommands(logger *slog.Logger) bool {
	ran := false
	for {
		select {
		case c := <-s.commands:
			err := c.fn(s.engine)
			if err != nil {
				logger.Debug("Session edit failed.", "error", err)
			}
			c.done <- err
			ran = true
		default:
			return ran
		}
	}
}

func (s *Session) drainResults(logger *slog.Logger) {
	if s.dispatcher == nil {
		return
	}
	for {
		select {
		case res, ok := <-s.dispatcher.Results():
			if !ok {
				return
			}
			delivered := s.engine.ResolveEffect(res)
			if s.observer != nil {
				s.observer.EffectResolved(res, delivered)
			}
			logger.Debug("Effect result received.", "node", res.Effect.NodeID, "effect", string(res.Effect.Kind), "delivered", delivered)
		default:
			return
		}
	}
}

// Do runs fn on the session goroutine before the next tick and waits for
// it. It must not be called from the goroutine running Run.
func (s *Session) Do(ctx context.Context, fn func(*engine.Engine) error) error {
	c := command{fn: fn, done: make(chan error, 1)}
	select {
	case s.commands <- c:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pulse fires a pulse into an input on the next tick.
func (s *Session) Pulse(ctx context.Context, to graph.Endpoint) error {
	return s.Do(ctx, func(e *engine.Engine) error { return e.Pulse(to) })
}

// Close stops Run, the effect dispatcher and the preview sink.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.dispatcher != nil {
			s.dispatcher.Close()
		}
		err = s.sink.Close()
	})
	return err
}
