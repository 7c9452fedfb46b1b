// Package utility provides general purpose nodes: value, time, delayOne,
// smoothValue and queue.
package utility

import (
	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/loop"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/pulse"
	"github.com/specialistvlad/stitchgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// ValueTypes are the types a value, delayOne or queue node can carry.
var ValueTypes = []pv.Kind{
	pv.KindNumber, pv.KindString, pv.KindBool, pv.KindPulse, pv.KindPosition,
	pv.KindSize, pv.KindPoint3D, pv.KindPoint4D, pv.KindTransform, pv.KindColor,
	pv.KindComparable, pv.KindShapeCommand, pv.KindJSON,
}

func typed(name string) registry.PortsFunc {
	return func(t pv.Kind) []registry.Port {
		return []registry.Port{{Name: name, Kind: t}}
	}
}

func evalValue(_ *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
	return eval.Outputs(inputs)
}

func evalTime(ctx *eval.Context, _, _ pv.List, _ ephemeral.State) eval.Result {
	return eval.Outputs(pv.List{
		{pv.Number(ctx.GraphTime)},
		{pv.Number(float64(ctx.FrameCount))},
	})
}

// evalDelayOne outputs what its input held on the previous evaluation. The
// first evaluation outputs the type's default.
func evalDelayOne(ctx *eval.Context, inputs, _ pv.List, state ephemeral.State) eval.Result {
	prev := state.(*ephemeral.PreviousValue)
	return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, i int) pv.Value {
		out, ok := prev.Get(i)
		if !ok {
			out = pv.Default(ctx.Type)
		}
		prev.Set(i, args[0])
		return out
	}))
}

func evalSmoothValue(_ *eval.Context, inputs, _ pv.List, state ephemeral.State) eval.Result {
	smooth := state.(*ephemeral.SmoothValue)
	return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, i int) pv.Value {
		target := pv.NumberOr(args[0], 0)
		hysteresis := pv.NumberOr(args[1], 0.4)
		return pv.Number(smooth.Step(i, target, hysteresis))
	}))
}

// evalQueue pushes the value at every loop index whose push input fires and
// empties the queue when clear fires. A non-positive size is unbounded.
func evalQueue(ctx *eval.Context, inputs, _ pv.List, state ephemeral.State) eval.Result {
	q := state.(*ephemeral.Queue)
	changed := false
	n := loop.LongestLength(inputs)
	for i := 0; i < n; i++ {
		args := loop.Args(inputs, i)
		if pulse.Fired(args[3], ctx.GraphTime) {
			q.Reset()
			changed = true
		}
		if pulse.Fired(args[2], ctx.GraphTime) {
			q.Push(args[0], int(pv.NumberOr(args[1], 0)))
			changed = true
		}
	}
	if !changed {
		return eval.Unchanged()
	}
	values := append(pv.Values(nil), q.Values...)
	last := pv.Default(ctx.Type)
	if len(values) > 0 {
		last = values[len(values)-1]
	}
	return eval.Outputs(pv.List{values, {last}})
}

// Register registers the node kinds with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(&registry.Definition{
		Kind:    "value",
		Types:   ValueTypes,
		Inputs:  typed("value"),
		Outputs: typed("value"),
		Eval:    evalValue,
	})
	r.RegisterNode(&registry.Definition{
		Kind:   "time",
		Inputs: registry.Static(),
		Outputs: registry.Static(
			registry.Port{Name: "time", Kind: pv.KindNumber},
			registry.Port{Name: "frame", Kind: pv.KindNumber},
		),
		Eval:       evalTime,
		AlwaysEval: true,
	})
	r.RegisterNode(&registry.Definition{
		Kind:     "delayOne",
		Types:    ValueTypes,
		Inputs:   typed("value"),
		Outputs:  typed("value"),
		Eval:     evalDelayOne,
		NewState: ephemeral.NewPreviousValue,
	})
	r.RegisterNode(&registry.Definition{
		Kind: "smoothValue",
		Inputs: registry.Static(
			registry.Port{Name: "value", Kind: pv.KindNumber},
			registry.Port{Name: "hysteresis", Kind: pv.KindNumber, Default: pv.Values{pv.Number(0.4)}},
		),
		Outputs:    registry.Static(registry.Port{Name: "value", Kind: pv.KindNumber}),
		Eval:       evalSmoothValue,
		NewState:   ephemeral.NewSmoothValue,
		AlwaysEval: true,
	})
	r.RegisterNode(&registry.Definition{
		Kind:  "queue",
		Types: ValueTypes,
		Inputs: func(t pv.Kind) []registry.Port {
			return []registry.Port{
				{Name: "value", Kind: t},
				{Name: "size", Kind: pv.KindNumber, Default: pv.Values{pv.Number(10)}},
				{Name: "push", Kind: pv.KindPulse},
				{Name: "clear", Kind: pv.KindPulse},
			}
		},
		Outputs: func(t pv.Kind) []registry.Port {
			return []registry.Port{
				{Name: "queue", Kind: t, Default: pv.Values{}},
				{Name: "last", Kind: t},
			}
		},
		Eval:       evalQueue,
		NewState:   ephemeral.NewQueue,
		AlwaysEval: true,
	})
}
