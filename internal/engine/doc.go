// Package engine drives the evaluation of a patch graph.
//
// Each call to Tick advances the graph clock once, by the real time elapsed
// since the previous tick, and runs a single pass over the graph in
// topological order. A node runs when it is dirty or always evaluated. New
// outputs are copied into downstream inputs, which marks those nodes dirty,
// unless the node reported no change or produced outputs equal to the old
// ones.
//
// The engine is single threaded. Effects returned by nodes are collected in
// the TickReport for the caller to execute; their results come back through
// ResolveEffect on a later tick.
package engine
