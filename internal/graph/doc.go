// Package graph stores the topology of a patch graph: its nodes and the
// port-level edges between them.
//
// # Edges
//
// An edge connects one output port to one input port. An input has at most
// one upstream edge; an output may feed any number of inputs. Connecting an
// input that already has an upstream replaces the old edge.
//
// # Ordering
//
// Order returns the nodes upstream-before-downstream using Kahn's algorithm
// with ties broken by node id, so two graphs with the same shape always
// evaluate in the same order. Cycles are allowed. Nodes that cannot be
// ordered because they sit on or behind a cycle are appended in id order;
// during a tick they see the last known value of any input whose upstream
// has not run yet.
//
// # Thread-Safety
//
// A Graph is owned by a single engine and is not safe for concurrent use.
package graph
