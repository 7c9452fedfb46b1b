// Package pulses provides the nodes that create, detect and react to pulses:
// pulse, pulseOnChange, flipSwitch, repeatingPulse, whenPrototypeStarts and
// restartPrototype.
package pulses

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

// changeTypes are the value types pulseOnChange can watch.
var changeTypes = []pv.Kind{
	pv.KindNumber, pv.KindString, pv.KindBool, pv.KindPosition, pv.KindSize,
	pv.KindPoint3D, pv.KindPoint4D, pv.KindColor, pv.KindJSON,
}

func pulsePort(name string) registry.Port {
	return registry.Port{Name: name, Kind: pv.KindPulse}
}

// evalPulse fires turned_on on a false to true transition of its input and
// turned_off on true to false. The first value seen for an index counts as a
// transition from false.
func evalPulse(ctx *eval.Context, inputs, previous pv.List, state ephemeral.State) eval.Result {
	prev := state.(*ephemeral.PreviousValue)
	now := pv.Pulse(ctx.GraphTime)
	fired := false
	out := loop.Eval2(inputs, func(args []pv.Value, i int) (pv.Value, pv.Value) {
		on := loop.At(previous[0], i)
		off := loop.At(previous[1], i)
		current := pv.Truthy(args[0])
		was := false
		if v, ok := prev.Get(i); ok {
			was = pv.Truthy(v)
		}
		prev.Set(i, pv.Bool(current))
		switch {
		case current && !was:
			on, fired = now, true
		case !current && was:
			off, fired = now, true
		}
		return orPulse(on), orPulse(off)
	})
	if !fired {
		return eval.Unchanged()
	}
	return eval.Outputs(out)
}

// evalPulseOnChange fires whenever its input differs from the value seen on
// the previous evaluation. The very first value is only remembered.
func evalPulseOnChange(ctx *eval.Context, inputs, previous pv.List, state ephemeral.State) eval.Result {
	prev := state.(*ephemeral.PreviousValue)
	fired := false
	out := loop.Eval1(inputs, func(args []pv.Value, i int) pv.Value {
		last, seen := prev.Get(i)
		prev.Set(i, args[0])
		if seen && !pv.Equal(last, args[0]) {
			fired = true
			return pv.Pulse(ctx.GraphTime)
		}
		return orPulse(loop.At(previous[0], i))
	})
	if !fired {
		return eval.Unchanged()
	}
	return eval.Outputs(out)
}

// Flip is the switch rule: flip negates, on and off together keep the value.
func Flip(current, flip, on, off bool) bool {
	switch {
	case flip:
		return !current
	case on && off:
		return current
	case on:
		return true
	case off:
		return false
	}
	return current
}

func evalFlipSwitch(ctx *eval.Context, inputs, previous pv.List, _ ephemeral.State) eval.Result {
	fired := false
	out := loop.Eval1(inputs, func(args []pv.Value, i int) pv.Value {
		current := pv.Truthy(loop.At(previous[0], i))
		flip := pulse.Fired(args[0], ctx.GraphTime)
		on := pulse.Fired(args[1], ctx.GraphTime)
		off := pulse.Fired(args[2], ctx.GraphTime)
		if flip || on || off {
			fired = true
		}
		return pv.Bool(Flip(current, flip, on, off))
	})
	if !fired {
		return eval.Unchanged()
	}
	return eval.Outputs(out)
}

// evalRepeatingPulse fires every frequency seconds. The previous output holds
// the time of the last fire.
func evalRepeatingPulse(ctx *eval.Context, inputs, previous pv.List, _ ephemeral.State) eval.Result {
	fired := false
	out := loop.Eval1(inputs, func(args []pv.Value, i int) pv.Value {
		last := pv.PulseOr(loop.At(previous[0], i), 0)
		if pulse.ShouldRepeat(ctx.GraphTime, last, pv.NumberOr(args[0], 0)) {
			fired = true
			return pv.Pulse(ctx.GraphTime)
		}
		return pv.Pulse(last)
	})
	if !fired {
		return eval.Unchanged()
	}
	return eval.Outputs(out)
}

func evalWhenPrototypeStarts(ctx *eval.Context, _, _ pv.List, _ ephemeral.State) eval.Result {
	if !pulse.IsPrototypeStartFrame(ctx.FrameCount) {
		return eval.Unchanged()
	}
	return eval.Outputs(pv.List{{pv.Pulse(ctx.GraphTime)}})
}

// evalRestartPrototype has no outputs. It asks the runtime to restart the
// session when any loop index of its input pulses.
func evalRestartPrototype(ctx *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
	for i, v := range inputs[0] {
		if pulse.Fired(v, ctx.GraphTime) {
			return eval.Unchanged(eval.Effect{Kind: eval.EffectRestart, Index: i})
		}
	}
	return eval.Unchanged()
}

func orPulse(v pv.Value) pv.Value {
	if v == nil {
		return pv.Pulse(0)
	}
	return v
}

// Register registers the node kinds with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(&registry.Definition{
		Kind:     "pulse",
		Inputs:   registry.Static(registry.Port{Name: "on", Kind: pv.KindBool}),
		Outputs:  registry.Static(pulsePort("turned_on"), pulsePort("turned_off")),
		Eval:     evalPulse,
		NewState: ephemeral.NewPreviousValue,
	})
	r.RegisterNode(&registry.Definition{
		Kind:  "pulseOnChange",
		Types: changeTypes,
		Inputs: func(t pv.Kind) []registry.Port {
			return []registry.Port{{Name: "value", Kind: t}}
		},
		Outputs:  registry.Static(pulsePort("pulse")),
		Eval:     evalPulseOnChange,
		NewState: ephemeral.NewPreviousValue,
	})
	r.RegisterNode(&registry.Definition{
		Kind:       "flipSwitch",
		Inputs:     registry.Static(pulsePort("flip"), pulsePort("turn_on"), pulsePort("turn_off")),
		Outputs:    registry.Static(registry.Port{Name: "on", Kind: pv.KindBool}),
		Eval:       evalFlipSwitch,
		AlwaysEval: true,
	})
	r.RegisterNode(&registry.Definition{
		Kind: "repeatingPulse",
		Inputs: registry.Static(registry.Port{
			Name:    "frequency",
			Kind:    pv.KindNumber,
			Default: pv.Values{pv.Number(3)},
		}),
		Outputs:    registry.Static(pulsePort("pulse")),
		Eval:       evalRepeatingPulse,
		AlwaysEval: true,
	})
	r.RegisterNode(&registry.Definition{
		Kind:       "whenPrototypeStarts",
		Inputs:     registry.Static(),
		Outputs:    registry.Static(pulsePort("pulse")),
		Eval:       evalWhenPrototypeStarts,
		AlwaysEval: true,
	})
	r.RegisterNode(&registry.Definition{
		Kind:       "restartPrototype",
		Inputs:     registry.Static(pulsePort("restart")),
		Outputs:    registry.Static(),
		Eval:       evalRestartPrototype,
		AlwaysEval: true,
	})
}
