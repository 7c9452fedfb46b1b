// Package eval is the contract between the engine and node kinds: what an
// evaluation function receives and what it may return.
package eval

import (
	"fmt"
	"log/slog"

	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
)

// Context is the read-only view of the graph clock and the node being
// evaluated.
type Context struct {
	GraphTime  float64
	FrameCount int
	NodeID     string
	NodeKind   string
	// Type is the node's current user visible type.
	Type   portvalue.Kind
	Logger *slog.Logger
	// Debug turns recoverable authoring problems into panics.
	Debug bool
}

func (c *Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Invalid reports malformed or missing input that the caller recovers from
// with a default. In debug mode it panics instead.
func (c *Context) Invalid(msg string, args ...any) {
	if c.Debug {
		panic(fmt.Sprintf("node %s (%s): %s %v", c.NodeID, c.NodeKind, msg, args))
	}
	c.logger().Warn(msg, append([]any{"node", c.NodeID, "kind", c.NodeKind}, args...)...)
}

// Func evaluates one node. inputs and previous are already the node's own
// copies; state is nil unless the node kind declares a factory. Functions
// must not block or perform I/O: anything of that sort is returned as an
// Effect.
type Func func(ctx *Context, inputs, previous portvalue.List, state ephemeral.State) Result

// Result is what an evaluation produced.
type Result struct {
	Outputs portvalue.List
	Effects []Effect
	// NoChange tells the engine to keep the previous outputs and not
	// propagate anything downstream. Outputs is ignored when set.
	NoChange bool
}

// Outputs is a Result carrying new outputs.
func Outputs(list portvalue.List) Result {
	return Result{Outputs: list}
}

// Unchanged is a Result that keeps the previous outputs.
func Unchanged(effects ...Effect) Result {
	return Result{NoChange: true, Effects: effects}
}
