package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/graph"
	"github.com/specialistvlad/stitchgrid/internal/node"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/registry"
	"github.com/specialistvlad/stitchgrid/internal/scheduler"
)

var (
	ErrUnknownKind     = errors.New("unknown node kind")
	ErrUnsupportedType = errors.New("type not supported by node kind")
	ErrInputConnected  = errors.New("input is driven by an edge")
	ErrValueKind       = errors.New("value does not match port kind")
	ErrNotPulsePort    = errors.New("port is not a pulse input")
)

// Step is the graph clock. It is advanced exactly once per tick.
type Step struct {
	// GraphTime is the number of seconds since the session started.
	GraphTime  float64
	FrameCount int
}

// Observer is notified about engine activity, typically to record metrics.
type Observer interface {
	NodeEvaluated(kind string, changed bool)
	EffectEmitted(kind eval.EffectKind)
	TickCompleted(d time.Duration)
}

type nopObserver struct{}

func (nopObserver) NodeEvaluated(string, bool)    {}
func (nopObserver) EffectEmitted(eval.EffectKind) {}
func (nopObserver) TickCompleted(time.Duration)   {}

// Options configure an Engine.
type Options struct {
	Logger *slog.Logger
	// Debug makes authoring problems inside node evaluation panic instead
	// of being logged.
	Debug    bool
	Observer Observer
}

// Engine owns a graph and its clock.
type Engine struct {
	registry *registry.Registry
	graph    *graph.Graph
	logger   *slog.Logger
	debug    bool
	observer Observer

	step     Step
	started  bool
	lastTick time.Time

	dirty  *scheduler.DirtySet
	pulses []graph.Endpoint
}

// New creates an engine that resolves node kinds through reg.
func New(reg *registry.Registry, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Engine{
		registry: reg,
		graph:    graph.New(),
		logger:   logger,
		debug:    opts.Debug,
		observer: observer,
		dirty:    scheduler.NewDirtySet(),
	}
}

// Graph exposes the topology for read access.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Step returns the current graph clock.
func (e *Engine) Step() Step {
	return e.step
}

// Node returns the node with the given id.
func (e *Engine) Node(id string) (*node.Node, bool) {
	return e.graph.Node(id)
}

// Outputs returns a copy of a node's output loops.
func (e *Engine) Outputs(id string) (portvalue.List, bool) {
	n, ok := e.graph.Node(id)
	if !ok {
		return nil, false
	}
	return n.OutputValues(), true
}

// AddNode creates a node of kind with user visible type t. An empty id gets
// a generated one. The node is evaluated on the next tick.
func (e *Engine) AddNode(kind, id string, t portvalue.Kind) (*node.Node, error) {
	def, ok := e.registry.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if !def.Supports(t) {
		return nil, fmt.Errorf("%w: %s does not support %s", ErrUnsupportedType, kind, t)
	}
	if id == "" {
		id = node.NewID()
	}
	n := node.New(id, def, t)
	if err := e.graph.AddNode(n); err != nil {
		return nil, err
	}
	e.dirty.Mark(id)
	e.logger.Debug("Node added.", "node", id, "kind", kind, "type", n.Type)
	return n, nil
}

// RemoveNode deletes a node and its edges. Inputs it used to feed keep their
// last value. Effect results addressed to it are dropped from now on.
func (e *Engine) RemoveNode(id string) error {
	if err := e.graph.RemoveNode(id); err != nil {
		return err
	}
	e.dirty.Clear(id)
	e.logger.Debug("Node removed.", "node", id)
	return nil
}

// Connect wires an output into an input. The input takes the current output
// values right away and its node becomes dirty.
func (e *Engine) Connect(from, to graph.Endpoint) error {
	if err := e.graph.Connect(from, to); err != nil {
		return err
	}
	src, _ := e.graph.Node(from.Node)
	out, _ := src.Output(from.Port)
	dst, _ := e.graph.Node(to.Node)
	in, _ := dst.Input(to.Port)
	in.Values = portvalue.CoerceValues(out.Values, in.Kind)
	e.dirty.Mark(to.Node)
	return nil
}

// Disconnect removes the edge feeding to. The input keeps its last value.
func (e *Engine) Disconnect(to graph.Endpoint) bool {
	if !e.graph.Disconnect(to) {
		return false
	}
	e.dirty.Mark(to.Node)
	return true
}

// SetInput replaces the loop of an unconnected input, as a user edit does.
func (e *Engine) SetInput(to graph.Endpoint, vs portvalue.Values) error {
	in, err := e.input(to)
	if err != nil {
		return err
	}
	if _, ok := e.graph.Upstream(to); ok {
		return fmt.Errorf("%w: %s", ErrInputConnected, to)
	}
	coerced := portvalue.CoerceValues(vs, in.Kind)
	for i, v := range coerced {
		if v == nil || v.Kind() != in.Kind {
			return fmt.Errorf("%w: %s expects %s at loop index %d", ErrValueKind, to, in.Kind, i)
		}
	}
	in.Values = coerced
	e.dirty.Mark(to.Node)
	return nil
}

// Pulse schedules a manual pulse into a pulse input. It is written with the
// graph time of the next tick, so it fires on that tick.
func (e *Engine) Pulse(to graph.Endpoint) error {
	in, err := e.input(to)
	if err != nil {
		return err
	}
	if in.Kind != portvalue.KindPulse {
		return fmt.Errorf("%w: %s", ErrNotPulsePort, to)
	}
	e.pulses = append(e.pulses, to)
	return nil
}

func (e *Engine) input(to graph.Endpoint) (*node.Port, error) {
	n, ok := e.graph.Node(to.Node)
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, to.Node)
	}
	in, ok := n.Input(to.Port)
	if !ok {
		return nil, fmt.Errorf("input %w: %s", graph.ErrPortNotFound, to)
	}
	return in, nil
}

// ChangeType switches a node to another user visible type. Ports are rebuilt
// for the new type, edges to ports that no longer exist are dropped and the
// new default outputs are pushed downstream.
func (e *Engine) ChangeType(id string, t portvalue.Kind) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id)
	}
	def := n.Definition()
	if len(def.Types) == 0 || !def.Supports(t) {
		return fmt.Errorf("%w: %s does not support %s", ErrUnsupportedType, def.Kind, t)
	}

	n.Retype(t)
	for _, edge := range e.graph.PruneDangling(id) {
		e.logger.Debug("Edge dropped after type change.", "from", edge.From.String(), "to", edge.To.String())
		e.dirty.Mark(edge.To.Node)
	}
	// Inputs still fed by an edge take the upstream values again.
	for _, in := range n.Inputs {
		to := graph.Endpoint{Node: id, Port: in.Name}
		if from, ok := e.graph.Upstream(to); ok {
			src, _ := e.graph.Node(from.Node)
			out, _ := src.Output(from.Port)
			in.Values = portvalue.CoerceValues(out.Values, in.Kind)
		}
	}
	e.propagate(n)
	e.dirty.Mark(id)
	e.logger.Debug("Node type changed.", "node", id, "type", t)
	return nil
}

// Restart resets the session: graph time and frame count go back to zero,
// ephemeral state is cleared, outputs return to their defaults and
// unconnected pulse inputs are disarmed. Every node runs on the next tick.
func (e *Engine) Restart() {
	e.step = Step{}
	e.started = false
	e.pulses = nil

	nodes := e.graph.Nodes()
	for _, n := range nodes {
		n.ResetState()
		n.ResetOutputs()
		for _, in := range n.Inputs {
			if in.Kind != portvalue.KindPulse {
				continue
			}
			if _, ok := e.graph.Upstream(graph.Endpoint{Node: n.ID, Port: in.Name}); !ok {
				in.Values = portvalue.Values{portvalue.Pulse(0)}
			}
		}
		e.dirty.Mark(n.ID)
	}
	for _, n := range nodes {
		e.propagate(n)
	}
	e.logger.Info("🔁 Prototype restarted", "nodes", len(nodes))
}

// propagate copies n's outputs into every connected input and marks the
// receiving nodes dirty.
func (e *Engine) propagate(n *node.Node) {
	for _, edge := range e.graph.Downstream(n.ID) {
		out, ok := n.Output(edge.From.Port)
		if !ok {
			continue
		}
		dst, ok := e.graph.Node(edge.To.Node)
		if !ok {
			continue
		}
		in, ok := dst.Input(edge.To.Port)
		if !ok {
			continue
		}
		in.Values = portvalue.CoerceValues(out.Values, in.Kind)
		e.dirty.Mark(dst.ID)
	}
}
