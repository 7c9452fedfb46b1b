package portvalue

// Value is one port value at one loop index. The set of implementations is
// closed to this package.
type Value interface {
	Kind() Kind
	sealed()
}

// Values is a loop: the parallel values held by a single port.
type Values []Value

// List holds one loop per port, in port order.
type List []Values

// Clone returns a copy of the list whose loops can be mutated independently.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, vs := range l {
		out[i] = append(Values(nil), vs...)
	}
	return out
}

// Single wraps one value into a loop of length one.
func Single(v Value) Values { return Values{v} }

type Number float64

type Bool bool

type String string

// Pulse carries the graph time at which it fired. Zero means never.
type Pulse float64

type Position struct {
	X, Y float64
}

type Point3D struct {
	X, Y, Z float64
}

type Point4D struct {
	X, Y, Z, W float64
}

// Transform is a decomposed 3D transform.
type Transform struct {
	PositionX, PositionY, PositionZ float64
	ScaleX, ScaleY, ScaleZ          float64
	RotationX, RotationY, RotationZ float64
}

// IdentityTransform has unit scale and no translation or rotation.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1, ScaleZ: 1}
}

// Color channels are in the 0..1 range.
type Color struct {
	R, G, B, A float64
}

// Comparable wraps a Number, String or Bool for nodes that accept any of the
// three and compare them.
type Comparable struct {
	Inner Value
}

// DimensionUnit tells how a LayerDimension is resolved against its parent.
type DimensionUnit int

const (
	UnitPoints DimensionUnit = iota
	UnitPercent
	UnitAuto
	UnitFill
	UnitHug
)

func (u DimensionUnit) String() string {
	switch u {
	case UnitPoints:
		return "points"
	case UnitPercent:
		return "percent"
	case UnitAuto:
		return "auto"
	case UnitFill:
		return "fill"
	case UnitHug:
		return "hug"
	default:
		return "unknown"
	}
}

// LayerDimension is one axis of a Size. Amount is only meaningful for
// points and percent.
type LayerDimension struct {
	Unit   DimensionUnit
	Amount float64
}

// Points returns a fixed dimension.
func Points(n float64) LayerDimension { return LayerDimension{Unit: UnitPoints, Amount: n} }

// Percent returns a dimension relative to the parent.
func Percent(n float64) LayerDimension { return LayerDimension{Unit: UnitPercent, Amount: n} }

type Size struct {
	Width, Height LayerDimension
}

// ShapeCommandType is the verb of a ShapeCommand.
type ShapeCommandType string

const (
	ShapeClosePath ShapeCommandType = "closePath"
	ShapeLineTo    ShapeCommandType = "lineTo"
	ShapeMoveTo    ShapeCommandType = "moveTo"
	ShapeCurveTo   ShapeCommandType = "curveTo"
)

// ShapeCommand is one path segment. CurveFrom and CurveTo are control points
// and are zero unless Type is ShapeCurveTo.
type ShapeCommand struct {
	Type      ShapeCommandType
	Point     Position
	CurveFrom Position
	CurveTo   Position
}

type BlendMode string

const (
	BlendNormal   BlendMode = "normal"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
	BlendOverlay  BlendMode = "overlay"
	BlendDarken   BlendMode = "darken"
	BlendLighten  BlendMode = "lighten"
)

type TextAlignment string

const (
	AlignLeft    TextAlignment = "left"
	AlignCenter  TextAlignment = "center"
	AlignRight   TextAlignment = "right"
	AlignJustify TextAlignment = "justify"
)

// Anchoring places a layer within its parent, as fractions of the parent size.
type Anchoring struct {
	X, Y float64
}

var (
	AnchorTopLeft = Anchoring{X: 0, Y: 0}
	AnchorCenter  = Anchoring{X: 0.5, Y: 0.5}
)

// JSON holds a decoded JSON document (maps, slices, float64, string, bool, nil).
type JSON struct {
	Data any
}

// Media is an opaque reference to media owned by the host runtime.
type Media struct {
	ID string
}

func (Number) Kind() Kind           { return KindNumber }
func (Bool) Kind() Kind             { return KindBool }
func (String) Kind() Kind           { return KindString }
func (Pulse) Kind() Kind            { return KindPulse }
func (Position) Kind() Kind         { return KindPosition }
func (Size) Kind() Kind             { return KindSize }
func (LayerDimension) Kind() Kind   { return KindLayerDimension }
func (Point3D) Kind() Kind          { return KindPoint3D }
func (Point4D) Kind() Kind          { return KindPoint4D }
func (Transform) Kind() Kind        { return KindTransform }
func (Color) Kind() Kind            { return KindColor }
func (Comparable) Kind() Kind       { return KindComparable }
func (ShapeCommand) Kind() Kind     { return KindShapeCommand }
func (ShapeCommandType) Kind() Kind { return KindShapeCommandType }
func (BlendMode) Kind() Kind        { return KindBlendMode }
func (TextAlignment) Kind() Kind    { return KindTextAlignment }
func (Anchoring) Kind() Kind        { return KindAnchoring }
func (JSON) Kind() Kind             { return KindJSON }
func (Media) Kind() Kind            { return KindMedia }

func (Number) sealed()           {}
func (Bool) sealed()             {}
func (String) sealed()           {}
func (Pulse) sealed()            {}
func (Position) sealed()         {}
func (Size) sealed()             {}
func (LayerDimension) sealed()   {}
func (Point3D) sealed()          {}
func (Point4D) sealed()          {}
func (Transform) sealed()        {}
func (Color) sealed()            {}
func (Comparable) sealed()       {}
func (ShapeCommand) sealed()     {}
func (ShapeCommandType) sealed() {}
func (BlendMode) sealed()        {}
func (TextAlignment) sealed()    {}
func (Anchoring) sealed()        {}
func (JSON) sealed()             {}
func (Media) sealed()            {}
