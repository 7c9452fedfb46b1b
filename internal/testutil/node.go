package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/node"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/registry"
)

// NodeHarness evaluates a single node kind outside the engine, keeping its
// outputs and ephemeral state between runs the way the engine would.
type NodeHarness struct {
	Node  *node.Node
	Debug bool

	t *testing.T
}

// NewNodeHarness registers mod into a fresh registry and creates one node of
// kind with user visible type typ.
func NewNodeHarness(t *testing.T, mod registry.Module, kind string, typ pv.Kind) *NodeHarness {
	t.Helper()
	reg := registry.NewWith(mod)
	def, ok := reg.Lookup(kind)
	require.True(t, ok, "node kind %q is not registered", kind)
	require.True(t, def.Supports(typ), "node kind %q does not support %s", kind, typ)
	return &NodeHarness{Node: node.New(kind, def, typ), t: t}
}

// Set replaces the loop of an input port.
func (h *NodeHarness) Set(name string, vs ...pv.Value) *NodeHarness {
	h.t.Helper()
	in, ok := h.Node.Input(name)
	require.True(h.t, ok, "input %q not found on %s", name, h.Node.Kind)
	in.Values = pv.CoerceValues(vs, in.Kind)
	return h
}

// Run evaluates the node once at the given graph clock. New outputs are kept
// unless the node reports no change.
func (h *NodeHarness) Run(graphTime float64, frame int) eval.Result {
	h.t.Helper()
	ctx := &eval.Context{
		GraphTime:  graphTime,
		FrameCount: frame,
		NodeID:     h.Node.ID,
		NodeKind:   h.Node.Kind,
		Type:       h.Node.Type,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Debug:      h.Debug,
	}
	res := h.Node.Definition().Eval(ctx, h.Node.InputValues(), h.Node.OutputValues(), h.Node.State)
	if !res.NoChange {
		require.Len(h.t, res.Outputs, len(h.Node.Outputs), "output arity of %s", h.Node.Kind)
		h.Node.SetOutputs(res.Outputs)
	}
	return res
}

// Output returns the current loop of an output port.
func (h *NodeHarness) Output(name string) pv.Values {
	h.t.Helper()
	out, ok := h.Node.Output(name)
	require.True(h.t, ok, "output %q not found on %s", name, h.Node.Kind)
	return out.Values
}
