// Package compare provides the comparison nodes. "equals" tolerates a small
// numeric difference while "equalsExactly" compares bit for bit.
package compare

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
	operandA = registry.Port{Name: "a", Kind: pv.KindComparable}
	operandB = registry.Port{Name: "b", Kind: pv.KindComparable}
	result   = registry.Static(registry.Port{Name: "result", Kind: pv.KindBool})
)

type predicate func(a, b pv.Value) bool

// binary evaluates a two operand comparison at every loop index. A missing
// operand compares as false.
func binary(p predicate) eval.Func {
	return func(_ *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
		return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, _ int) pv.Value {
			return pv.Bool(p(args[0], args[1]))
		}))
	}
}

func evalEquals(_ *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
	return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, _ int) pv.Value {
		threshold := pv.NumberOr(args[2], pv.DefaultEqualityThreshold)
		return pv.Bool(pv.EqualWithinThreshold(args[0], args[1], threshold))
	}))
}

// Register registers the node kinds with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(&registry.Definition{
		Kind: "equals",
		Inputs: registry.Static(operandA, operandB, registry.Port{
			Name:    "threshold",
			Kind:    pv.KindNumber,
			Default: pv.Values{pv.Number(pv.DefaultEqualityThreshold)},
		}),
		Outputs: result,
		Eval:    evalEquals,
	})

	binaries := []struct {
		kind string
		p    predicate
	}{
		{"equalsExactly", pv.Identical},
		{"greaterThan", pv.Greater},
		{"greaterOrEqual", pv.GreaterOrEqual},
		{"lessThan", pv.Less},
		{"lessThanOrEqual", pv.LessOrEqual},
	}
	for _, b := range binaries {
		r.RegisterNode(&registry.Definition{
			Kind:    b.kind,
			Inputs:  registry.Static(operandA, operandB),
			Outputs: result,
			Eval:    binary(b.p),
		})
	}
}
