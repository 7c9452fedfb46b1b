// Package logic provides the boolean gates: and, or and not.
package logic

import (
	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/loop"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	gateInputs = registry.Static(
		registry.Port{Name: "a", Kind: pv.KindBool},
		registry.Port{Name: "b", Kind: pv.KindBool},
	)
	resultOutput = registry.Static(registry.Port{Name: "result", Kind: pv.KindBool})
)

// All is true when every value is truthy. It is false for no values.
func All(vs ...pv.Value) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if !pv.Truthy(v) {
			return false
		}
	}
	return true
}

// Any is true when at least one value is truthy.
func Any(vs ...pv.Value) bool {
	for _, v := range vs {
		if pv.Truthy(v) {
			return true
		}
	}
	return false
}

// gate evaluates op at every loop index. A gate without any input values is
// an authoring problem and yields false.
func gate(op func(...pv.Value) bool) eval.Func {
	return func(ctx *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
		if loop.LongestLength(inputs) == 0 {
			ctx.Invalid("Logic gate has no input values.")
			return eval.Outputs(pv.List{{pv.Bool(false)}})
		}
		return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, _ int) pv.Value {
			return pv.Bool(op(args...))
		}))
	}
}

func evalNot(_ *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
	return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, _ int) pv.Value {
		return pv.Bool(!pv.Truthy(args[0]))
	}))
}

// Register registers the node kinds with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(&registry.Definition{
		Kind:    "and",
		Inputs:  gateInputs,
		Outputs: resultOutput,
		Eval:    gate(All),
	})
	r.RegisterNode(&registry.Definition{
		Kind:    "or",
		Inputs:  gateInputs,
		Outputs: resultOutput,
		Eval:    gate(Any),
	})
	r.RegisterNode(&registry.Definition{
		Kind:    "not",
		Inputs:  registry.Static(registry.Port{Name: "value", Kind: pv.KindBool}),
		Outputs: resultOutput,
		Eval:    evalNot,
	})
}
