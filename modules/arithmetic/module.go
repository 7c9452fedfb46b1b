// Package arithmetic provides add, subtract, multiply and divide over
// numbers, positions and 3D points. Add also concatenates strings.
package arithmetic

import (
	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/loop"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var numericTypes = []pv.Kind{pv.KindNumber, pv.KindPosition, pv.KindPoint3D}

// Op combines two components.
type Op func(a, b float64) float64

func add(a, b float64) float64      { return a + b }
func subtract(a, b float64) float64 { return a - b }
func multiply(a, b float64) float64 { return a * b }

// Divide returns a / b, except that a zero denominator yields a * 0 instead
// of an infinity.
func Divide(a, b float64) float64 {
	if b == 0 {
		return a * b
	}
	return a / b
}

// Apply combines two values of type t component wise. Operands of the wrong
// type read as t's default.
func Apply(t pv.Kind, op Op, a, b pv.Value) pv.Value {
	switch t {
	case pv.KindPosition:
		pa, _ := pv.AsPosition(a)
		pb, _ := pv.AsPosition(b)
		return pv.Position{X: op(pa.X, pb.X), Y: op(pa.Y, pb.Y)}
	case pv.KindPoint3D:
		pa, _ := pv.AsPoint3D(a)
		pb, _ := pv.AsPoint3D(b)
		return pv.Point3D{X: op(pa.X, pb.X), Y: op(pa.Y, pb.Y), Z: op(pa.Z, pb.Z)}
	default:
		return pv.Number(op(pv.NumberOr(a, 0), pv.NumberOr(b, 0)))
	}
}

func binary(op Op) eval.Func {
	return func(ctx *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
		return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, _ int) pv.Value {
			return Apply(ctx.Type, op, args[0], args[1])
		}))
	}
}

func evalAdd(ctx *eval.Context, inputs, previous pv.List, state ephemeral.State) eval.Result {
	if ctx.Type != pv.KindString {
		return binary(add)(ctx, inputs, previous, state)
	}
	return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, _ int) pv.Value {
		a, _ := pv.AsString(args[0])
		b, _ := pv.AsString(args[1])
		return pv.String(a + b)
	}))
}

func operands(t pv.Kind) []registry.Port {
	return []registry.Port{{Name: "a", Kind: t}, {Name: "b", Kind: t}}
}

func result(t pv.Kind) []registry.Port {
	return []registry.Port{{Name: "result", Kind: t}}
}

// Register registers the node kinds with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(&registry.Definition{
		Kind:    "add",
		Types:   append(append([]pv.Kind(nil), numericTypes...), pv.KindString),
		Inputs:  operands,
		Outputs: result,
		Eval:    evalAdd,
	})
	r.RegisterNode(&registry.Definition{
		Kind:    "subtract",
		Types:   numericTypes,
		Inputs:  operands,
		Outputs: result,
		Eval:    binary(subtract),
	})
	r.RegisterNode(&registry.Definition{
		Kind:  "multiply",
		Types: numericTypes,
		Inputs: func(t pv.Kind) []registry.Port {
			ports := operands(t)
			ports[1].Default = pv.Values{Apply(t, func(float64, float64) float64 { return 1 }, nil, nil)}
			return ports
		},
		Outputs: result,
		Eval:    binary(multiply),
	})
	r.RegisterNode(&registry.Definition{
		Kind:    "divide",
		Types:   numericTypes,
		Inputs:  operands,
		Outputs: result,
		Eval:    binary(Divide),
	})
}
