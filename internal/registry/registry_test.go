package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
)

func noopEval(*eval.Context, pv.List, pv.List, ephemeral.State) eval.Result {
	return eval.Unchanged()
}

type testModule struct{ defs []*Definition }

func (m *testModule) Register(r *Registry) {
	for _, d := range m.defs {
		r.RegisterNode(d)
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := NewWith(&testModule{defs: []*Definition{
		{Kind: "b", Inputs: Static(), Outputs: Static(), Eval: noopEval},
		{Kind: "a", Inputs: Static(), Outputs: Static(), Eval: noopEval},
	}})

	assert.Equal(t, []string{"a", "b"}, r.Kinds())
	def, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "a", def.Kind)
	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	assert.Panics(t, func() {
		r.RegisterNode(&Definition{Kind: "a"})
	}, "duplicate kinds must panic")
}

func TestDefinition_Types(t *testing.T) {
	t.Parallel()

	def := &Definition{Types: []pv.Kind{pv.KindPosition, pv.KindSize}}
	assert.Equal(t, pv.KindPosition, def.DefaultType())
	assert.True(t, def.Supports(pv.KindSize))
	assert.True(t, def.Supports(pv.KindNone))
	assert.False(t, def.Supports(pv.KindColor))

	assert.Equal(t, pv.KindNone, (&Definition{}).DefaultType())
}

func TestPort_InitialValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pv.Values{pv.Number(0)}, Port{Name: "a", Kind: pv.KindNumber}.InitialValues())
	assert.Empty(t, Port{Name: "url", Kind: pv.KindString, Default: pv.Values{}}.InitialValues())

	defaults := pv.Values{pv.Number(2)}
	p := Port{Name: "a", Kind: pv.KindNumber, Default: defaults}
	got := p.InitialValues()
	got[0] = pv.Number(5)
	assert.Equal(t, pv.Number(2), defaults[0], "initial values must not alias the declaration")
}

func TestValidateRegistry(t *testing.T) {
	t.Parallel()

	t.Run("valid registry passes", func(t *testing.T) {
		r := New()
		r.RegisterNode(&Definition{
			Kind:    "ok",
			Types:   []pv.Kind{pv.KindNumber, pv.KindString},
			Inputs:  func(t pv.Kind) []Port { return []Port{{Name: "in", Kind: t}} },
			Outputs: func(t pv.Kind) []Port { return []Port{{Name: "out", Kind: t}} },
			Eval:    noopEval,
		})
		require.NoError(t, r.ValidateRegistry(context.Background()))
	})

	t.Run("all problems are reported", func(t *testing.T) {
		r := New()
		r.RegisterNode(&Definition{Kind: "no_eval", Inputs: Static(), Outputs: Static()})
		r.RegisterNode(&Definition{Kind: "no_ports", Eval: noopEval})
		r.RegisterNode(&Definition{
			Kind:    "bad_ports",
			Inputs:  Static(Port{Name: "x", Kind: pv.KindNumber}, Port{Name: "x", Kind: pv.KindNumber}),
			Outputs: Static(Port{Name: "y", Kind: pv.KindBool, Default: pv.Values{pv.Number(1)}}),
			Eval:    noopEval,
		})

		err := r.ValidateRegistry(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'no_eval': missing eval function")
		assert.Contains(t, err.Error(), "'no_ports': missing port declarations")
		assert.Contains(t, err.Error(), "duplicate input port 'x'")
		assert.Contains(t, err.Error(), "output port 'y' default does not match kind bool")
	})
}
