// Package portvalue defines the values that flow through node ports.
//
// A Value is one item at one loop index of one port. Values is a loop, the
// ordered list of parallel values a port holds, and List is the ordered set
// of loops for all ports of one side of a node.
//
// Reads never trap: every accessor returns (T, bool) and callers pick their
// own fallback when the variant does not match.
package portvalue
