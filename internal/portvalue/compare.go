package portvalue

import (
	"math"
	"reflect"
	"strings"
)

// DefaultEqualityThreshold is the tolerance used by threshold equality when a
// graph does not set one.
const DefaultEqualityThreshold = 0.0001

// Equal reports structural equality. Comparable wrappers are significant:
// Number(1) and Comparable{Number(1)} are different values.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch ta := a.(type) {
	case JSON:
		return reflect.DeepEqual(ta.Data, b.(JSON).Data)
	case Comparable:
		return Equal(ta.Inner, b.(Comparable).Inner)
	}
	return a == b
}

// EqualValues compares two loops element by element.
func EqualValues(a, b Values) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// EqualLists compares two port lists loop by loop.
func EqualLists(a, b List) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualValues(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Identical is bit for bit equality of comparable values. Unlike Equal it
// tells 0 from -0 and treats a NaN as identical to itself.
func Identical(a, b Value) bool {
	ca, okA := AsComparable(a)
	cb, okB := AsComparable(b)
	if !okA || !okB {
		return false
	}
	if na, ok := ca.(Number); ok {
		nb, ok := cb.(Number)
		return ok && math.Float64bits(float64(na)) == math.Float64bits(float64(nb))
	}
	return ca == cb
}

// EqualWithinThreshold compares comparable values. Numbers match when their
// distance is at most threshold, strings and bools must be equal. Mixed or
// non-comparable operands never match.
func EqualWithinThreshold(a, b Value, threshold float64) bool {
	ca, okA := AsComparable(a)
	cb, okB := AsComparable(b)
	if !okA || !okB {
		return false
	}
	if na, ok := ca.(Number); ok {
		nb, ok := cb.(Number)
		return ok && math.Abs(float64(na)-float64(nb)) <= threshold
	}
	return ca == cb
}

// Compare orders two comparable values of the same variant. Strings compare
// lexicographically and false sorts before true. ok is false when the pair
// cannot be ordered.
func Compare(a, b Value) (result int, ok bool) {
	ca, okA := AsComparable(a)
	cb, okB := AsComparable(b)
	if !okA || !okB || ca.Kind() != cb.Kind() {
		return 0, false
	}
	switch x := ca.(type) {
	case Number:
		y := cb.(Number)
		if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case String:
		return strings.Compare(string(x), string(cb.(String))), true
	case Bool:
		y := cb.(Bool)
		switch {
		case x == y:
			return 0, true
		case !bool(x):
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func Less(a, b Value) bool {
	c, ok := Compare(a, b)
	return ok && c < 0
}

func LessOrEqual(a, b Value) bool {
	c, ok := Compare(a, b)
	return ok && c <= 0
}

func Greater(a, b Value) bool {
	c, ok := Compare(a, b)
	return ok && c > 0
}

func GreaterOrEqual(a, b Value) bool {
	c, ok := Compare(a, b)
	return ok && c >= 0
}
