// Package scheduler decides which nodes run during a tick.
//
// A node is visited when it is dirty: one of its inputs changed since it last
// ran, it was just created or edited, or its kind is always evaluated.
// Visiting follows the graph order and marking is allowed mid-pass, so a
// node whose upstream changed earlier in the same tick still runs in that
// tick. Nodes marked after their turn has passed (a back edge of a cycle)
// stay dirty and run on the next tick.
package scheduler
