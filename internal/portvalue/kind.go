package portvalue

import (
	"fmt"
	"sort"
)

// Kind identifies the variant of a Value. It doubles as the user visible type
// of a node, which decides the shape of type dependent ports.
type Kind int

const (
	// KindNone is the zero Kind. Nodes created with it use their default type.
	KindNone Kind = iota
	KindNumber
	KindBool
	KindString
	KindPulse
	KindPosition
	KindSize
	KindLayerDimension
	KindPoint3D
	KindPoint4D
	KindTransform
	KindColor
	KindComparable
	KindShapeCommand
	KindShapeCommandType
	KindBlendMode
	KindTextAlignment
	KindAnchoring
	KindJSON
	KindMedia
)

var kindNames = map[Kind]string{
	KindNone:             "none",
	KindNumber:           "number",
	KindBool:             "bool",
	KindString:           "string",
	KindPulse:            "pulse",
	KindPosition:         "position",
	KindSize:             "size",
	KindLayerDimension:   "layerDimension",
	KindPoint3D:          "point3D",
	KindPoint4D:          "point4D",
	KindTransform:        "transform",
	KindColor:            "color",
	KindComparable:       "comparable",
	KindShapeCommand:     "shapeCommand",
	KindShapeCommandType: "shapeCommandType",
	KindBlendMode:        "blendMode",
	KindTextAlignment:    "textAlignment",
	KindAnchoring:        "anchoring",
	KindJSON:             "json",
	KindMedia:            "media",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves the name used in graph documents into a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name && k != KindNone {
			return k, nil
		}
	}
	known := make([]string, 0, len(kindNames))
	for k, n := range kindNames {
		if k != KindNone {
			known = append(known, n)
		}
	}
	sort.Strings(known)
	return KindNone, fmt.Errorf("unknown value type %q (known: %v)", name, known)
}

// Default returns the value a freshly created port of kind k holds.
func Default(k Kind) Value {
	switch k {
	case KindNumber:
		return Number(0)
	case KindBool:
		return Bool(false)
	case KindString:
		return String("")
	case KindPulse:
		return Pulse(0)
	case KindPosition:
		return Position{}
	case KindSize:
		return Size{Width: Points(0), Height: Points(0)}
	case KindLayerDimension:
		return Points(0)
	case KindPoint3D:
		return Point3D{}
	case KindPoint4D:
		return Point4D{}
	case KindTransform:
		return IdentityTransform()
	case KindColor:
		return Color{A: 1}
	case KindComparable:
		return Comparable{Inner: Number(0)}
	case KindShapeCommand:
		return ShapeCommand{Type: ShapeMoveTo}
	case KindShapeCommandType:
		return ShapeMoveTo
	case KindBlendMode:
		return BlendNormal
	case KindTextAlignment:
		return AlignLeft
	case KindAnchoring:
		return AnchorTopLeft
	case KindJSON:
		return JSON{}
	case KindMedia:
		return Media{}
	default:
		return nil
	}
}
