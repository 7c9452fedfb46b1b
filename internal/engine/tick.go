package engine

import (
	"math"
	"time"

	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/node"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/registry"
	"github.com/specialistvlad/stitchgrid/internal/scheduler"
)

// TickReport summarizes one tick.
type TickReport struct {
	Step Step
	// Evaluated is the number of node evaluations in this tick.
	Evaluated int
	// Changed lists, in evaluation order, the nodes whose outputs changed.
	Changed []string
	Effects []eval.Effect
}

// MinTickInterval is the graph time a tick adds when the clock reports no
// elapsed time. Pulses are matched by timestamp, so two ticks must never
// share one.
const MinTickInterval = time.Microsecond

// advance returns the graph time of the next tick, strictly after current.
func advance(current float64, elapsed time.Duration) float64 {
	if elapsed < MinTickInterval {
		elapsed = MinTickInterval
	}
	next := current + elapsed.Seconds()
	if next <= current {
		next = math.Nextafter(current, math.Inf(1))
	}
	return next
}

// Tick advances the graph clock to now and evaluates every dirty node once.
// The first tick after New or Restart runs at graph time zero. Later ticks
// add the real elapsed time, at least MinTickInterval.
func (e *Engine) Tick(now time.Time) TickReport {
	start := time.Now()

	if !e.started {
		e.started = true
		e.step.GraphTime = 0
	} else {
		e.step.GraphTime = advance(e.step.GraphTime, now.Sub(e.lastTick))
	}
	e.lastTick = now
	e.step.FrameCount++

	e.applyPulses()
	for _, n := range e.graph.Nodes() {
		if n.Definition().AlwaysEval {
			e.dirty.Mark(n.ID)
		}
	}

	report := TickReport{Step: e.step}
	report.Evaluated = scheduler.Visit(e.graph.Order(), e.dirty, func(id string) {
		n, ok := e.graph.Node(id)
		if !ok {
			return
		}
		changed, effects := e.evaluate(n)
		if changed {
			report.Changed = append(report.Changed, id)
		}
		report.Effects = append(report.Effects, effects...)
	})

	d := time.Since(start)
	e.observer.TickCompleted(d)
	e.logger.Debug("Tick completed.",
		"frame", e.step.FrameCount,
		"graph_time", e.step.GraphTime,
		"evaluated", report.Evaluated,
		"changed", len(report.Changed),
		"effects", len(report.Effects),
		"duration", d,
	)
	return report
}

// applyPulses writes queued manual pulses with the current graph time.
func (e *Engine) applyPulses() {
	for _, to := range e.pulses {
		in, err := e.input(to)
		if err != nil {
			e.logger.Debug("Dropping pulse for missing input.", "input", to.String())
			continue
		}
		in.Values = portvalue.Values{portvalue.Pulse(e.step.GraphTime)}
		e.dirty.Mark(to.Node)
	}
	e.pulses = nil
}

// evaluate runs one node and propagates its outputs when they changed.
func (e *Engine) evaluate(n *node.Node) (bool, []eval.Effect) {
	def := n.Definition()
	ctx := &eval.Context{
		GraphTime:  e.step.GraphTime,
		FrameCount: e.step.FrameCount,
		NodeID:     n.ID,
		NodeKind:   n.Kind,
		Type:       n.Type,
		Logger:     e.logger,
		Debug:      e.debug,
	}
	previous := n.OutputValues()

	res, ok := e.run(def, ctx, n.InputValues(), previous, n.State)
	if !ok {
		e.observer.NodeEvaluated(n.Kind, false)
		return false, nil
	}

	effects := make([]eval.Effect, 0, len(res.Effects))
	for _, eff := range res.Effects {
		eff.NodeID = n.ID
		eff.Frame = e.step.FrameCount
		effects = append(effects, eff)
		e.observer.EffectEmitted(eff.Kind)
	}

	changed := e.apply(ctx, n, res, previous)
	e.observer.NodeEvaluated(n.Kind, changed)
	return changed, effects
}

func (e *Engine) apply(ctx *eval.Context, n *node.Node, res eval.Result, previous portvalue.List) bool {
	if res.NoChange {
		return false
	}
	if len(res.Outputs) != len(n.Outputs) {
		ctx.Invalid("Evaluation returned the wrong number of outputs.", "want", len(n.Outputs), "got", len(res.Outputs))
		return false
	}
	if portvalue.EqualLists(res.Outputs, previous) {
		return false
	}
	n.SetOutputs(res.Outputs)
	e.propagate(n)
	return true
}

// run calls the evaluation function. Outside debug mode a panic is logged
// and the node keeps its previous outputs.
func (e *Engine) run(def *registry.Definition, ctx *eval.Context, inputs, previous portvalue.List, state ephemeral.State) (res eval.Result, ok bool) {
	if !e.debug {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("💥 Node evaluation panicked", "node", ctx.NodeID, "kind", ctx.NodeKind, "panic", r)
				res, ok = eval.Result{}, false
			}
		}()
	}
	return def.Eval(ctx, inputs, previous, state), true
}

// ResolveEffect delivers the outcome of an effect to the node that issued
// it. Results for nodes that no longer exist, or whose state does not accept
// results, are dropped. It reports whether the result was delivered.
func (e *Engine) ResolveEffect(res eval.EffectResult) bool {
	n, ok := e.graph.Node(res.Effect.NodeID)
	if !ok {
		e.logger.Debug("Dropping effect result for removed node.", "node", res.Effect.NodeID, "kind", string(res.Effect.Kind))
		return false
	}
	receiver, ok := n.State.(ephemeral.Receiver)
	if !ok {
		e.logger.Debug("Dropping effect result for node without receiver.", "node", n.ID, "kind", string(res.Effect.Kind))
		return false
	}
	if !receiver.Receive(res.Effect.Index, res.Value, res.Err) {
		e.logger.Debug("Dropping effect result the node is not waiting for.", "node", n.ID, "kind", string(res.Effect.Kind), "index", res.Effect.Index)
		return false
	}
	e.dirty.Mark(n.ID)
	return true
}
