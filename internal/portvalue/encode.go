package portvalue

// Encode turns v into plain Go data that encoding/json and the preview relay
// can serialize. Missing values encode as nil.
func Encode(v Value) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Number:
		return float64(t)
	case Bool:
		return bool(t)
	case String:
		return string(t)
	case Pulse:
		return map[string]any{"pulse": float64(t)}
	case Position:
		return map[string]any{"x": t.X, "y": t.Y}
	case Anchoring:
		return map[string]any{"x": t.X, "y": t.Y}
	case Point3D:
		return map[string]any{"x": t.X, "y": t.Y, "z": t.Z}
	case Point4D:
		return map[string]any{"x": t.X, "y": t.Y, "z": t.Z, "w": t.W}
	case LayerDimension:
		return encodeDimension(t)
	case Size:
		return map[string]any{"width": encodeDimension(t.Width), "height": encodeDimension(t.Height)}
	case Transform:
		return map[string]any{
			"position_x": t.PositionX, "position_y": t.PositionY, "position_z": t.PositionZ,
			"scale_x": t.ScaleX, "scale_y": t.ScaleY, "scale_z": t.ScaleZ,
			"rotation_x": t.RotationX, "rotation_y": t.RotationY, "rotation_z": t.RotationZ,
		}
	case Color:
		return map[string]any{"r": t.R, "g": t.G, "b": t.B, "a": t.A}
	case Comparable:
		return Encode(t.Inner)
	case ShapeCommand:
		return map[string]any{
			"type":       string(t.Type),
			"point":      Encode(t.Point),
			"curve_from": Encode(t.CurveFrom),
			"curve_to":   Encode(t.CurveTo),
		}
	case ShapeCommandType:
		return string(t)
	case BlendMode:
		return string(t)
	case TextAlignment:
		return string(t)
	case JSON:
		return t.Data
	case Media:
		return map[string]any{"media": t.ID}
	}
	return nil
}

// EncodeValues encodes a whole loop.
func EncodeValues(vs Values) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = Encode(v)
	}
	return out
}

func encodeDimension(d LayerDimension) any {
	switch d.Unit {
	case UnitPoints:
		return d.Amount
	case UnitPercent:
		return map[string]any{"percent": d.Amount}
	}
	return d.Unit.String()
}
