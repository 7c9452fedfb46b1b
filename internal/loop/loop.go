// Package loop aligns the loops of several ports to a common length and
// applies an operation at every loop index.
//
// Shorter loops are read with index wrapping, so a loop of one behaves like a
// scalar. An empty loop among non-empty ones reads as a missing value.
package loop

import "github.com/specialistvlad/stitchgrid/internal/portvalue"

// LongestLength is the broadcast length of a set of loops: the longest loop,
// or zero when every loop is empty.
func LongestLength(list portvalue.List) int {
	longest := 0
	for _, vs := range list {
		if len(vs) > longest {
			longest = len(vs)
		}
	}
	return longest
}

// At reads index i of a loop with wrap around. It returns nil for an empty loop.
func At(vs portvalue.Values, i int) portvalue.Value {
	if len(vs) == 0 {
		return nil
	}
	return vs[i%len(vs)]
}

// Lengthen stretches vs to n values by repeating it. Empty loops stay empty.
func Lengthen(vs portvalue.Values, n int) portvalue.Values {
	if len(vs) == 0 || len(vs) >= n {
		return vs
	}
	out := make(portvalue.Values, n)
	for i := range out {
		out[i] = vs[i%len(vs)]
	}
	return out
}

// Broadcast lengthens every loop in list to the broadcast length.
func Broadcast(list portvalue.List) portvalue.List {
	n := LongestLength(list)
	out := make(portvalue.List, len(list))
	for i, vs := range list {
		out[i] = Lengthen(vs, n)
	}
	return out
}

// Args returns the values of every port at loop index i.
func Args(list portvalue.List, i int) []portvalue.Value {
	args := make([]portvalue.Value, len(list))
	for p, vs := range list {
		args[p] = At(vs, i)
	}
	return args
}

// Op computes the outputs for one loop index from one value per input port.
type Op func(args []portvalue.Value, i int) []portvalue.Value

// EvalN runs op at every index of the broadcast inputs and gathers its
// results into arity output loops. op must return exactly arity values.
func EvalN(inputs portvalue.List, arity int, op Op) portvalue.List {
	n := LongestLength(inputs)
	out := make(portvalue.List, arity)
	for o := range out {
		out[o] = make(portvalue.Values, 0, n)
	}
	for i := 0; i < n; i++ {
		results := op(Args(inputs, i), i)
		for o := 0; o < arity; o++ {
			out[o] = append(out[o], results[o])
		}
	}
	return out
}

// Eval1 is EvalN for operations with a single output.
func Eval1(inputs portvalue.List, op func(args []portvalue.Value, i int) portvalue.Value) portvalue.List {
	return EvalN(inputs, 1, func(args []portvalue.Value, i int) []portvalue.Value {
		return []portvalue.Value{op(args, i)}
	})
}

func Eval2(inputs portvalue.List, op func(args []portvalue.Value, i int) (portvalue.Value, portvalue.Value)) portvalue.List {
	return EvalN(inputs, 2, func(args []portvalue.Value, i int) []portvalue.Value {
		a, b := op(args, i)
		return []portvalue.Value{a, b}
	})
}

func Eval3(inputs portvalue.List, op func(args []portvalue.Value, i int) [3]portvalue.Value) portvalue.List {
	return EvalN(inputs, 3, func(args []portvalue.Value, i int) []portvalue.Value {
		r := op(args, i)
		return r[:]
	})
}

func Eval4(inputs portvalue.List, op func(args []portvalue.Value, i int) [4]portvalue.Value) portvalue.List {
	return EvalN(inputs, 4, func(args []portvalue.Value, i int) []portvalue.Value {
		r := op(args, i)
		return r[:]
	})
}

func Eval9(inputs portvalue.List, op func(args []portvalue.Value, i int) [9]portvalue.Value) portvalue.List {
	return EvalN(inputs, 9, func(args []portvalue.Value, i int) []portvalue.Value {
		r := op(args, i)
		return r[:]
	})
}
