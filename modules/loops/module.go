// Package loops provides the nodes that build and reshape loops:
// loopBuilder, loopCount and loopSelect.
package loops

import (
	"strconv"

	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// BuilderInputs is the number of inputs of a loop builder.
const BuilderInputs = 5

var loopTypes = []pv.Kind{
	pv.KindNumber, pv.KindString, pv.KindBool, pv.KindPosition, pv.KindSize,
	pv.KindPoint3D, pv.KindPoint4D, pv.KindColor, pv.KindJSON,
}

// withDefault returns types reordered so that def comes first.
func withDefault(def pv.Kind, types []pv.Kind) []pv.Kind {
	out := []pv.Kind{def}
	for _, t := range types {
		if t != def {
			out = append(out, t)
		}
	}
	return out
}

// Indices returns 0..n-1 as numbers.
func Indices(n int) pv.Values {
	out := make(pv.Values, n)
	for i := range out {
		out[i] = pv.Number(float64(i))
	}
	return out
}

// WrapIndex maps any integer onto 0..length-1, counting negative indices from
// the end.
func WrapIndex(i, length int) int {
	if length <= 0 {
		return 0
	}
	i %= length
	if i < 0 {
		i += length
	}
	return i
}

// evalLoopBuilder takes one value from every input. An input that itself
// carries a loop contributes its type's default.
func evalLoopBuilder(ctx *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
	values := make(pv.Values, 0, len(inputs))
	for _, vs := range inputs {
		switch len(vs) {
		case 1:
			values = append(values, vs[0])
		default:
			values = append(values, pv.Default(ctx.Type))
		}
	}
	return eval.Outputs(pv.List{Indices(len(values)), values})
}

func evalLoopCount(_ *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
	return eval.Outputs(pv.List{{pv.Number(float64(len(inputs[0])))}})
}

// evalLoopSelect picks a value for every entry of the index loop.
func evalLoopSelect(ctx *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
	values, indices := inputs[0], inputs[1]
	if len(values) == 0 {
		ctx.Invalid("Loop select has nothing to select from.")
		return eval.Outputs(pv.List{{pv.Default(ctx.Type)}, {pv.Number(0)}})
	}
	out := make(pv.Values, len(indices))
	for i, idx := range indices {
		out[i] = values[WrapIndex(int(pv.NumberOr(idx, 0)), len(values))]
	}
	return eval.Outputs(pv.List{out, Indices(len(out))})
}

// Register registers the node kinds with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(&registry.Definition{
		Kind:  "loopBuilder",
		Types: loopTypes,
		Inputs: func(t pv.Kind) []registry.Port {
			ports := make([]registry.Port, BuilderInputs)
			for i := range ports {
				ports[i] = registry.Port{Name: "value_" + strconv.Itoa(i+1), Kind: t}
			}
			return ports
		},
		Outputs: func(t pv.Kind) []registry.Port {
			return []registry.Port{
				{Name: "index", Kind: pv.KindNumber},
				{Name: "values", Kind: t},
			}
		},
		Eval: evalLoopBuilder,
	})
	r.RegisterNode(&registry.Definition{
		Kind:  "loopCount",
		Types: loopTypes,
		Inputs: func(t pv.Kind) []registry.Port {
			return []registry.Port{{Name: "loop", Kind: t}}
		},
		Outputs: registry.Static(registry.Port{Name: "count", Kind: pv.KindNumber}),
		Eval:    evalLoopCount,
	})
	r.RegisterNode(&registry.Definition{
		Kind:  "loopSelect",
		Types: withDefault(pv.KindString, loopTypes),
		Inputs: func(t pv.Kind) []registry.Port {
			return []registry.Port{
				{Name: "input", Kind: t},
				{Name: "index", Kind: pv.KindNumber},
			}
		},
		Outputs: func(t pv.Kind) []registry.Port {
			return []registry.Port{
				{Name: "loop", Kind: t},
				{Name: "index", Kind: pv.KindNumber},
			}
		},
		Eval: evalLoopSelect,
	})
}
