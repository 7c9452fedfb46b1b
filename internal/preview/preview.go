// Package preview publishes what a running session produces to an external
// preview runtime.
package preview

import (
	"context"
	"errors"
	"sync"

	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/nodestore"
)

// ErrNotConnected is returned when publishing on a sink that lost its
// connection.
var ErrNotConnected = errors.New("preview sink not connected")

const (
	EventFrame  = "frame"
	EventEffect = "effect"
)

// Frame carries the outputs of the nodes that changed during one tick.
type Frame struct {
	Frame   int
	Time    float64
	Outputs map[string]map[string][]any
}

// NewFrame builds a frame from the snapshots captured in a tick.
func NewFrame(frame int, graphTime float64, snaps []nodestore.Snapshot) Frame {
	f := Frame{Frame: frame, Time: graphTime, Outputs: make(map[string]map[string][]any, len(snaps))}
	for _, s := range snaps {
		f.Outputs[s.ID] = s.Outputs
	}
	return f
}

// Payload is the event body sent over the wire.
func (f Frame) Payload() map[string]any {
	outputs := make(map[string]any, len(f.Outputs))
	for id, ports := range f.Outputs {
		outputs[id] = ports
	}
	return map[string]any{"frame": f.Frame, "time": f.Time, "outputs": outputs}
}

// EffectEvent announces an effect emitted by a node.
type EffectEvent struct {
	Node  string
	Kind  eval.EffectKind
	Frame int
}

// NewEffectEvent describes eff.
func NewEffectEvent(eff eval.Effect) EffectEvent {
	return EffectEvent{Node: eff.NodeID, Kind: eff.Kind, Frame: eff.Frame}
}

// Payload is the event body sent over the wire.
func (e EffectEvent) Payload() map[string]any {
	return map[string]any{"node": e.Node, "kind": string(e.Kind), "frame": e.Frame}
}

// Sink receives published frames and effects.
type Sink interface {
	PublishFrame(ctx context.Context, f Frame) error
	PublishEffect(ctx context.Context, e EffectEvent) error
	Close() error
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) PublishFrame(context.Context, Frame) error        { return nil }
func (Discard) PublishEffect(context.Context, EffectEvent) error { return nil }
func (Discard) Close() error                                     { return nil }

// Recorder is a Sink that keeps everything in memory.
type Recorder struct {
	mu      sync.Mutex
	frames  []Frame
	effects []EffectEvent
	closed  bool
}

func (r *Recorder) PublishFrame(_ context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *Recorder) PublishEffect(_ context.Context, e EffectEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, e)
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Frames returns a copy of the recorded frames.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Effects returns a copy of the recorded effect events.
func (r *Recorder) Effects() []EffectEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EffectEvent(nil), r.effects...)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
