// Package counter provides the pulse driven counter node.
package counter

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

// Signals are the pulses a counter saw on one tick.
type Signals struct {
	Increase, Decrease, Jump bool
}

// Next applies one tick of signals to current. Jump wins over everything,
// a simultaneous increase and decrease cancel out. A positive max wraps the
// count back to zero when an increase reaches it.
func Next(current float64, s Signals, jumpTo, max float64) float64 {
	switch {
	case s.Jump:
		return jumpTo
	case s.Increase && s.Decrease:
		return current
	case s.Increase:
		next := current + 1
		if max > 0 && next >= max {
			return 0
		}
		return next
	case s.Decrease:
		return current - 1
	}
	return current
}

func evalCounter(ctx *eval.Context, inputs, previous pv.List, _ ephemeral.State) eval.Result {
	fired := false
	out := loop.Eval1(inputs, func(args []pv.Value, i int) pv.Value {
		s := Signals{
			Increase: pulse.Fired(args[0], ctx.GraphTime),
			Decrease: pulse.Fired(args[1], ctx.GraphTime),
			Jump:     pulse.Fired(args[2], ctx.GraphTime),
		}
		current := pv.NumberOr(loop.At(previous[0], i), 0)
		if !s.Increase && !s.Decrease && !s.Jump {
			return pv.Number(current)
		}
		fired = true
		return pv.Number(Next(current, s, pv.NumberOr(args[3], 0), pv.NumberOr(args[4], 0)))
	})
	if !fired {
		return eval.Unchanged()
	}
	return eval.Outputs(out)
}

// Register registers the node kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(&registry.Definition{
		Kind: "counter",
		Inputs: registry.Static(
			registry.Port{Name: "increase", Kind: pv.KindPulse},
			registry.Port{Name: "decrease", Kind: pv.KindPulse},
			registry.Port{Name: "jump", Kind: pv.KindPulse},
			registry.Port{Name: "jump_to_number", Kind: pv.KindNumber},
			registry.Port{Name: "maximum_count", Kind: pv.KindNumber},
		),
		Outputs:    registry.Static(registry.Port{Name: "count", Kind: pv.KindNumber}),
		Eval:       evalCounter,
		AlwaysEval: true,
	})
}
