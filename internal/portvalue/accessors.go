package portvalue

// AsNumber reads a number, looking through Comparable.
func AsNumber(v Value) (float64, bool) {
	switch t := v.(type) {
	case Number:
		return float64(t), true
	case Comparable:
		return AsNumber(t.Inner)
	}
	return 0, false
}

// AsBool reads a bool, looking through Comparable.
func AsBool(v Value) (bool, bool) {
	switch t := v.(type) {
	case Bool:
		return bool(t), true
	case Comparable:
		return AsBool(t.Inner)
	}
	return false, false
}

// AsString reads a string, looking through Comparable.
func AsString(v Value) (string, bool) {
	switch t := v.(type) {
	case String:
		return string(t), true
	case Comparable:
		return AsString(t.Inner)
	}
	return "", false
}

// AsPulse reads the fire time of a pulse.
func AsPulse(v Value) (float64, bool) {
	if p, ok := v.(Pulse); ok {
		return float64(p), true
	}
	return 0, false
}

func AsPosition(v Value) (Position, bool) {
	p, ok := v.(Position)
	return p, ok
}

func AsSize(v Value) (Size, bool) {
	s, ok := v.(Size)
	return s, ok
}

func AsLayerDimension(v Value) (LayerDimension, bool) {
	d, ok := v.(LayerDimension)
	return d, ok
}

func AsPoint3D(v Value) (Point3D, bool) {
	p, ok := v.(Point3D)
	return p, ok
}

func AsPoint4D(v Value) (Point4D, bool) {
	p, ok := v.(Point4D)
	return p, ok
}

func AsTransform(v Value) (Transform, bool) {
	t, ok := v.(Transform)
	return t, ok
}

func AsColor(v Value) (Color, bool) {
	c, ok := v.(Color)
	return c, ok
}

func AsShapeCommand(v Value) (ShapeCommand, bool) {
	c, ok := v.(ShapeCommand)
	return c, ok
}

func AsJSON(v Value) (JSON, bool) {
	j, ok := v.(JSON)
	return j, ok
}

// AsComparable returns the underlying Number, String or Bool of v.
func AsComparable(v Value) (Value, bool) {
	switch t := v.(type) {
	case Number, String, Bool:
		return t, true
	case Comparable:
		return AsComparable(t.Inner)
	}
	return nil, false
}

// Truthy coerces v for logic gates: bools as is, numbers when non-zero.
// Anything else, including a missing value, is false.
func Truthy(v Value) bool {
	if b, ok := AsBool(v); ok {
		return b
	}
	if n, ok := AsNumber(v); ok {
		return n != 0
	}
	return false
}

// NumberOr is AsNumber with a fallback.
func NumberOr(v Value, fallback float64) float64 {
	if n, ok := AsNumber(v); ok {
		return n
	}
	return fallback
}

// PulseOr is AsPulse with a fallback.
func PulseOr(v Value, fallback float64) float64 {
	if p, ok := AsPulse(v); ok {
		return p
	}
	return fallback
}

// Coerce adapts v for a port of kind k where the conversion is lossless:
// Number, String and Bool wrap into Comparable and a Comparable unwraps into
// its inner kind. Any other value is returned unchanged.
func Coerce(v Value, k Kind) Value {
	if v == nil || v.Kind() == k {
		return v
	}
	switch k {
	case KindComparable:
		if inner, ok := AsComparable(v); ok {
			return Comparable{Inner: inner}
		}
	case KindNumber, KindString, KindBool:
		if c, ok := v.(Comparable); ok && c.Inner != nil && c.Inner.Kind() == k {
			return c.Inner
		}
	}
	return v
}

// CoerceValues applies Coerce to every value of a loop.
func CoerceValues(vs Values, k Kind) Values {
	out := make(Values, len(vs))
	for i, v := range vs {
		out[i] = Coerce(v, k)
	}
	return out
}
