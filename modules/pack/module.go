// Package pack provides the pack and unpack nodes, which convert between a
// composite value and its fields. The number and kind of the field ports
// depend on the node's type.
package pack

import (
	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/loop"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Types lists the composite types both nodes support, default first.
var Types = []pv.Kind{pv.KindSize, pv.KindPosition, pv.KindPoint3D, pv.KindPoint4D, pv.KindTransform, pv.KindShapeCommand}

// layout describes how one composite type splits into fields.
type layout struct {
	fields []registry.Port
	split  func(v pv.Value) ([]pv.Value, bool)
	join   func(fields []pv.Value) pv.Value
}

func numbers(names ...string) []registry.Port {
	ports := make([]registry.Port, len(names))
	for i, n := range names {
		ports[i] = registry.Port{Name: n, Kind: pv.KindNumber}
	}
	return ports
}

// transformFields defaults the scale fields to one so a fresh pack node
// builds the identity transform.
func transformFields() []registry.Port {
	ports := numbers(
		"position_x", "position_y", "position_z",
		"scale_x", "scale_y", "scale_z",
		"rotation_x", "rotation_y", "rotation_z",
	)
	for i := 3; i < 6; i++ {
		ports[i].Default = pv.Values{pv.Number(1)}
	}
	return ports
}

func num(v pv.Value) float64 { return pv.NumberOr(v, 0) }

func position(v pv.Value) pv.Position {
	p, _ := pv.AsPosition(v)
	return p
}

func dimension(v pv.Value) pv.LayerDimension {
	if d, ok := pv.AsLayerDimension(v); ok {
		return d
	}
	if n, ok := pv.AsNumber(v); ok {
		return pv.Points(n)
	}
	return pv.Points(0)
}

var layouts = map[pv.Kind]layout{
	pv.KindSize: {
		fields: []registry.Port{
			{Name: "width", Kind: pv.KindLayerDimension},
			{Name: "height", Kind: pv.KindLayerDimension},
		},
		split: func(v pv.Value) ([]pv.Value, bool) {
			s, ok := pv.AsSize(v)
			return []pv.Value{s.Width, s.Height}, ok
		},
		join: func(f []pv.Value) pv.Value {
			return pv.Size{Width: dimension(f[0]), Height: dimension(f[1])}
		},
	},
	pv.KindPosition: {
		fields: numbers("x", "y"),
		split: func(v pv.Value) ([]pv.Value, bool) {
			p, ok := pv.AsPosition(v)
			return []pv.Value{pv.Number(p.X), pv.Number(p.Y)}, ok
		},
		join: func(f []pv.Value) pv.Value {
			return pv.Position{X: num(f[0]), Y: num(f[1])}
		},
	},
	pv.KindPoint3D: {
		fields: numbers("x", "y", "z"),
		split: func(v pv.Value) ([]pv.Value, bool) {
			p, ok := pv.AsPoint3D(v)
			return []pv.Value{pv.Number(p.X), pv.Number(p.Y), pv.Number(p.Z)}, ok
		},
		join: func(f []pv.Value) pv.Value {
			return pv.Point3D{X: num(f[0]), Y: num(f[1]), Z: num(f[2])}
		},
	},
	pv.KindPoint4D: {
		fields: numbers("x", "y", "z", "w"),
		split: func(v pv.Value) ([]pv.Value, bool) {
			p, ok := pv.AsPoint4D(v)
			return []pv.Value{pv.Number(p.X), pv.Number(p.Y), pv.Number(p.Z), pv.Number(p.W)}, ok
		},
		join: func(f []pv.Value) pv.Value {
			return pv.Point4D{X: num(f[0]), Y: num(f[1]), Z: num(f[2]), W: num(f[3])}
		},
	},
	pv.KindTransform: {
		fields: transformFields(),
		split: func(v pv.Value) ([]pv.Value, bool) {
			t, ok := pv.AsTransform(v)
			if !ok {
				t = pv.IdentityTransform()
			}
			return []pv.Value{
				pv.Number(t.PositionX), pv.Number(t.PositionY), pv.Number(t.PositionZ),
				pv.Number(t.ScaleX), pv.Number(t.ScaleY), pv.Number(t.ScaleZ),
				pv.Number(t.RotationX), pv.Number(t.RotationY), pv.Number(t.RotationZ),
			}, ok
		},
		join: func(f []pv.Value) pv.Value {
			return pv.Transform{
				PositionX: num(f[0]), PositionY: num(f[1]), PositionZ: num(f[2]),
				ScaleX: num(f[3]), ScaleY: num(f[4]), ScaleZ: num(f[5]),
				RotationX: num(f[6]), RotationY: num(f[7]), RotationZ: num(f[8]),
			}
		},
	},
	pv.KindShapeCommand: {
		fields: []registry.Port{
			{Name: "command_type", Kind: pv.KindShapeCommandType},
			{Name: "point", Kind: pv.KindPosition},
			{Name: "curve_from", Kind: pv.KindPosition},
			{Name: "curve_to", Kind: pv.KindPosition},
		},
		split: func(v pv.Value) ([]pv.Value, bool) {
			c, ok := pv.AsShapeCommand(v)
			if !ok {
				c = pv.ShapeCommand{Type: pv.ShapeMoveTo}
			}
			return []pv.Value{c.Type, c.Point, c.CurveFrom, c.CurveTo}, ok
		},
		join: func(f []pv.Value) pv.Value {
			typ, ok := f[0].(pv.ShapeCommandType)
			if !ok {
				typ = pv.ShapeMoveTo
			}
			return pv.ShapeCommand{Type: typ, Point: position(f[1]), CurveFrom: position(f[2]), CurveTo: position(f[3])}
		},
	},
}

func fieldsOf(t pv.Kind) []registry.Port {
	return layouts[t].fields
}

func valuePort(t pv.Kind) []registry.Port {
	return []registry.Port{{Name: "value", Kind: t}}
}

// Split returns the fields of a composite value of type t. A value of the
// wrong type yields the fields of t's default and false.
func Split(t pv.Kind, v pv.Value) ([]pv.Value, bool) {
	l, ok := layouts[t]
	if !ok {
		return nil, false
	}
	fields, ok := l.split(v)
	if !ok {
		fields, _ = l.split(pv.Default(t))
	}
	return fields, ok
}

// Join builds a composite value of type t from its fields.
func Join(t pv.Kind, fields []pv.Value) (pv.Value, bool) {
	l, ok := layouts[t]
	if !ok || len(fields) != len(l.fields) {
		return nil, false
	}
	return l.join(fields), true
}

func evalUnpack(ctx *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
	arity := len(fieldsOf(ctx.Type))
	return eval.Outputs(loop.EvalN(inputs, arity, func(args []pv.Value, i int) []pv.Value {
		fields, ok := Split(ctx.Type, args[0])
		if !ok {
			ctx.Invalid("Unpack input does not match the node type.", "type", ctx.Type.String(), "index", i)
		}
		return fields
	}))
}

func evalPack(ctx *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
	return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, _ int) pv.Value {
		v, _ := Join(ctx.Type, args)
		return v
	}))
}

// Register registers the node kinds with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(&registry.Definition{
		Kind:    "unpack",
		Types:   Types,
		Inputs:  valuePort,
		Outputs: fieldsOf,
		Eval:    evalUnpack,
	})
	r.RegisterNode(&registry.Definition{
		Kind:    "pack",
		Types:   Types,
		Inputs:  fieldsOf,
		Outputs: valuePort,
		Eval:    evalPack,
	})
}
