package portvalue

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// FromCty converts a literal from a graph document into a loop. Tuples, lists
// and sets become loops of their elements; anything else is a loop of one.
// hint is the kind of the receiving port and disambiguates literals that fit
// several variants, such as a number written into a pulse port.
func FromCty(val cty.Value, hint Kind) (Values, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("value must be known and not null")
	}
	ty := val.Type()
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make(Values, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			v, err := fromCtyElement(elem, hint)
			if err != nil {
				return nil, fmt.Errorf("loop index %d: %w", len(out), err)
			}
			out = append(out, v)
		}
		return out, nil
	}
	v, err := fromCtyElement(val, hint)
	if err != nil {
		return nil, err
	}
	return Values{v}, nil
}

func fromCtyElement(val cty.Value, hint Kind) (Value, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("value must be known and not null")
	}
	if hint == KindJSON {
		return ctyToJSON(val)
	}

	ty := val.Type()
	switch {
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		switch hint {
		case KindPulse:
			return Pulse(f), nil
		case KindComparable:
			return Comparable{Inner: Number(f)}, nil
		case KindLayerDimension:
			return Points(f), nil
		}
		return Number(f), nil

	case ty == cty.String:
		return stringForKind(val.AsString(), hint)

	case ty == cty.Bool:
		if hint == KindComparable {
			return Comparable{Inner: Bool(val.True())}, nil
		}
		return Bool(val.True()), nil

	case ty.IsObjectType() || ty.IsMapType():
		return objectForKind(val, hint)
	}
	return nil, fmt.Errorf("unsupported literal of type %s", ty.FriendlyName())
}

func stringForKind(s string, hint Kind) (Value, error) {
	switch hint {
	case KindComparable:
		return Comparable{Inner: String(s)}, nil
	case KindLayerDimension:
		return ParseLayerDimension(s)
	case KindShapeCommandType:
		switch t := ShapeCommandType(s); t {
		case ShapeClosePath, ShapeLineTo, ShapeMoveTo, ShapeCurveTo:
			return t, nil
		}
		return nil, fmt.Errorf("unknown shape command %q", s)
	case KindBlendMode:
		switch m := BlendMode(s); m {
		case BlendNormal, BlendMultiply, BlendScreen, BlendOverlay, BlendDarken, BlendLighten:
			return m, nil
		}
		return nil, fmt.Errorf("unknown blend mode %q", s)
	case KindTextAlignment:
		switch a := TextAlignment(s); a {
		case AlignLeft, AlignCenter, AlignRight, AlignJustify:
			return a, nil
		}
		return nil, fmt.Errorf("unknown text alignment %q", s)
	case KindMedia:
		return Media{ID: s}, nil
	}
	return String(s), nil
}

// ParseLayerDimension reads "auto", "fill", "hug", "50%" or a plain number.
func ParseLayerDimension(s string) (LayerDimension, error) {
	switch s = strings.TrimSpace(s); s {
	case "auto":
		return LayerDimension{Unit: UnitAuto}, nil
	case "fill":
		return LayerDimension{Unit: UnitFill}, nil
	case "hug":
		return LayerDimension{Unit: UnitHug}, nil
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return LayerDimension{}, fmt.Errorf("invalid percent dimension %q", s)
		}
		return Percent(f), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return LayerDimension{}, fmt.Errorf("invalid dimension %q", s)
	}
	return Points(f), nil
}

func objectForKind(val cty.Value, hint Kind) (Value, error) {
	attrs := val.AsValueMap()
	if hint == KindNone || hint == KindComparable {
		hint = inferObjectKind(attrs)
	}
	r := attrReader{attrs: attrs}
	var v Value
	switch hint {
	case KindPosition:
		v = Position{X: r.number("x", 0), Y: r.number("y", 0)}
	case KindAnchoring:
		v = Anchoring{X: r.number("x", 0), Y: r.number("y", 0)}
	case KindPoint3D:
		v = Point3D{X: r.number("x", 0), Y: r.number("y", 0), Z: r.number("z", 0)}
	case KindPoint4D:
		v = Point4D{X: r.number("x", 0), Y: r.number("y", 0), Z: r.number("z", 0), W: r.number("w", 0)}
	case KindSize:
		v = Size{Width: r.dimension("width"), Height: r.dimension("height")}
	case KindColor:
		v = Color{R: r.number("r", 0), G: r.number("g", 0), B: r.number("b", 0), A: r.number("a", 1)}
	case KindTransform:
		v = Transform{
			PositionX: r.number("position_x", 0), PositionY: r.number("position_y", 0), PositionZ: r.number("position_z", 0),
			ScaleX: r.number("scale_x", 1), ScaleY: r.number("scale_y", 1), ScaleZ: r.number("scale_z", 1),
			RotationX: r.number("rotation_x", 0), RotationY: r.number("rotation_y", 0), RotationZ: r.number("rotation_z", 0),
		}
	case KindShapeCommand:
		cmd := ShapeCommand{
			Type:      ShapeCommandType(r.string("type", string(ShapeMoveTo))),
			Point:     r.position("point"),
			CurveFrom: r.position("curve_from"),
			CurveTo:   r.position("curve_to"),
		}
		if _, err := stringForKind(string(cmd.Type), KindShapeCommandType); err != nil {
			r.fail(err)
		}
		v = cmd
	default:
		return ctyToJSON(val)
	}
	if r.err != nil {
		return nil, r.err
	}
	return v, nil
}

func inferObjectKind(attrs map[string]cty.Value) Kind {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	switch strings.Join(keys, ",") {
	case "x,y":
		return KindPosition
	case "x,y,z":
		return KindPoint3D
	case "w,x,y,z":
		return KindPoint4D
	case "height,width":
		return KindSize
	case "b,g,r", "a,b,g,r":
		return KindColor
	}
	return KindJSON
}

type attrReader struct {
	attrs map[string]cty.Value
	err   error
}

func (r *attrReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *attrReader) number(name string, fallback float64) float64 {
	v, ok := r.attrs[name]
	if !ok || v.IsNull() {
		return fallback
	}
	if v.Type() != cty.Number {
		r.fail(fmt.Errorf("attribute %q must be a number", name))
		return fallback
	}
	f, _ := v.AsBigFloat().Float64()
	return f
}

func (r *attrReader) string(name, fallback string) string {
	v, ok := r.attrs[name]
	if !ok || v.IsNull() {
		return fallback
	}
	if v.Type() != cty.String {
		r.fail(fmt.Errorf("attribute %q must be a string", name))
		return fallback
	}
	return v.AsString()
}

func (r *attrReader) dimension(name string) LayerDimension {
	v, ok := r.attrs[name]
	if !ok || v.IsNull() {
		return Points(0)
	}
	switch v.Type() {
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return Points(f)
	case cty.String:
		d, err := ParseLayerDimension(v.AsString())
		if err != nil {
			r.fail(fmt.Errorf("attribute %q: %w", name, err))
		}
		return d
	}
	r.fail(fmt.Errorf("attribute %q must be a number or a dimension string", name))
	return Points(0)
}

func (r *attrReader) position(name string) Position {
	v, ok := r.attrs[name]
	if !ok || v.IsNull() {
		return Position{}
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		r.fail(fmt.Errorf("attribute %q must be an object with x and y", name))
		return Position{}
	}
	inner := attrReader{attrs: v.AsValueMap()}
	p := Position{X: inner.number("x", 0), Y: inner.number("y", 0)}
	if inner.err != nil {
		r.fail(fmt.Errorf("attribute %q: %w", name, inner.err))
	}
	return p
}

func ctyToJSON(val cty.Value) (Value, error) {
	raw, err := ctyjson.SimpleJSONValue{Value: val}.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding json literal: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decoding json literal: %w", err)
	}
	return JSON{Data: data}, nil
}
