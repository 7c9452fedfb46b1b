package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/graph"
	"github.com/specialistvlad/stitchgrid/internal/loop"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/pulse"
	"github.com/specialistvlad/stitchgrid/internal/registry"
	"github.com/specialistvlad/stitchgrid/modules/counter"
	"github.com/specialistvlad/stitchgrid/modules/pulses"
)

func numberPort(name string) registry.Port {
	return registry.Port{Name: name, Kind: pv.KindNumber}
}

var valueDef = &registry.Definition{
	Kind:    "value",
	Inputs:  registry.Static(numberPort("value")),
	Outputs: registry.Static(numberPort("value")),
	Eval: func(_ *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
		return eval.Outputs(inputs)
	},
}

var incDef = &registry.Definition{
	Kind:    "inc",
	Inputs:  registry.Static(numberPort("in")),
	Outputs: registry.Static(numberPort("out")),
	Eval: func(_ *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
		return eval.Outputs(loop.Eval1(inputs, func(args []pv.Value, _ int) pv.Value {
			return pv.Number(pv.NumberOr(args[0], 0) + 1)
		}))
	},
}

// countDef counts its own evaluations through its previous output.
var countDef = &registry.Definition{
	Kind:       "count",
	Inputs:     registry.Static(),
	Outputs:    registry.Static(numberPort("count")),
	AlwaysEval: true,
	Eval: func(_ *eval.Context, _, previous pv.List, _ ephemeral.State) eval.Result {
		n := pv.NumberOr(loop.At(previous[0], 0), 0)
		return eval.Outputs(pv.List{{pv.Number(n + 1)}})
	},
}

var watchDef = &registry.Definition{
	Kind:       "watch",
	Inputs:     registry.Static(registry.Port{Name: "pulse", Kind: pv.KindPulse}),
	Outputs:    registry.Static(registry.Port{Name: "fired", Kind: pv.KindBool}),
	AlwaysEval: true,
	Eval: func(ctx *eval.Context, inputs, _ pv.List, _ ephemeral.State) eval.Result {
		return eval.Outputs(pv.List{{pv.Bool(pulse.AnyFired(inputs[0], ctx.GraphTime))}})
	},
}

var fetchDef = &registry.Definition{
	Kind:     "fetch",
	Inputs:   registry.Static(),
	Outputs:  registry.Static(numberPort("value")),
	NewState: ephemeral.NewRequest,
	Eval: func(_ *eval.Context, _, _ pv.List, state ephemeral.State) eval.Result {
		req := state.(*ephemeral.Request)
		if res, ok := req.Result(0); ok {
			return eval.Outputs(pv.List{{res.Value}})
		}
		if req.Loading(0) {
			return eval.Unchanged()
		}
		req.Begin(0)
		return eval.Unchanged(eval.Effect{
			Kind: eval.EffectHTTPRequest,
			HTTP: &eval.HTTPRequest{Method: "GET", URL: "http://localhost/data"},
		})
	},
}

var typedDef = &registry.Definition{
	Kind:   "typed",
	Types:  []pv.Kind{pv.KindNumber, pv.KindString},
	Inputs: registry.Static(),
	Outputs: func(t pv.Kind) []registry.Port {
		if t == pv.KindString {
			return []registry.Port{{Name: "text", Kind: pv.KindString}}
		}
		return []registry.Port{numberPort("value")}
	},
	Eval: func(*eval.Context, pv.List, pv.List, ephemeral.State) eval.Result {
		return eval.Unchanged()
	},
}

var boomDef = &registry.Definition{
	Kind:    "boom",
	Inputs:  registry.Static(),
	Outputs: registry.Static(numberPort("out")),
	Eval: func(*eval.Context, pv.List, pv.List, ephemeral.State) eval.Result {
		panic("boom")
	},
}

var arityDef = &registry.Definition{
	Kind:    "arity",
	Inputs:  registry.Static(),
	Outputs: registry.Static(numberPort("out")),
	Eval: func(*eval.Context, pv.List, pv.List, ephemeral.State) eval.Result {
		return eval.Outputs(pv.List{{pv.Number(1)}, {pv.Number(2)}})
	},
}

type recordingObserver struct {
	evaluated map[string]int
	changed   map[string]int
	effects   []eval.EffectKind
	ticks     int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{evaluated: map[string]int{}, changed: map[string]int{}}
}

func (o *recordingObserver) NodeEvaluated(kind string, changed bool) {
	o.evaluated[kind]++
	if changed {
		o.changed[kind]++
	}
}

func (o *recordingObserver) EffectEmitted(kind eval.EffectKind) { o.effects = append(o.effects, kind) }
func (o *recordingObserver) TickCompleted(time.Duration)        { o.ticks++ }

type testEngine struct {
	*Engine
	clock *ManualClock
}

// newTestEngine builds an engine over the test node kinds plus any extra
// definitions, driven by a manual clock.
func newTestEngine(t *testing.T, opts Options, extra ...*registry.Definition) *testEngine {
	t.Helper()
	reg := registry.New()
	for _, def := range append([]*registry.Definition{valueDef, incDef, countDef, watchDef, fetchDef, typedDef, boomDef, arityDef}, extra...) {
		reg.RegisterNode(def)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &testEngine{
		Engine: New(reg, opts),
		clock:  NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func (te *testEngine) add(t *testing.T, kind, id string) {
	t.Helper()
	_, err := te.AddNode(kind, id, pv.KindNone)
	require.NoError(t, err)
}

func (te *testEngine) connect(t *testing.T, from, out, to, in string) {
	t.Helper()
	require.NoError(t, te.Connect(graph.Endpoint{Node: from, Port: out}, graph.Endpoint{Node: to, Port: in}))
}

func (te *testEngine) tick(d time.Duration) TickReport {
	return te.Tick(te.clock.Advance(d))
}

func (te *testEngine) outputs(t *testing.T, id string) pv.List {
	t.Helper()
	out, ok := te.Outputs(id)
	require.True(t, ok, "node %s not found", id)
	return out
}

func TestTick_GraphClock(t *testing.T) {
	te := newTestEngine(t, Options{})

	t.Run("first tick runs at time zero", func(t *testing.T) {
		r := te.Tick(te.clock.Now())
		assert.Equal(t, Step{GraphTime: 0, FrameCount: 1}, r.Step)
	})

	t.Run("later ticks add the elapsed time", func(t *testing.T) {
		r := te.tick(500 * time.Millisecond)
		assert.Equal(t, Step{GraphTime: 0.5, FrameCount: 2}, r.Step)
	})

	t.Run("a clock going backwards does not rewind graph time", func(t *testing.T) {
		r := te.Tick(te.clock.Now().Add(-time.Second))
		assert.Equal(t, 3, r.Step.FrameCount)
		assert.InDelta(t, 0.5+MinTickInterval.Seconds(), r.Step.GraphTime, 1e-12)
		assert.Equal(t, r.Step, te.Step())
	})
}

// startDef stamps a pulse on the start frame, whatever the graph time.
var startDef = &registry.Definition{
	Kind:       "start",
	Inputs:     registry.Static(),
	Outputs:    registry.Static(registry.Port{Name: "pulse", Kind: pv.KindPulse}),
	AlwaysEval: true,
	Eval: func(ctx *eval.Context, _, _ pv.List, _ ephemeral.State) eval.Result {
		if !pulse.IsPrototypeStartFrame(ctx.FrameCount) {
			return eval.Unchanged()
		}
		return eval.Outputs(pv.List{{pv.Pulse(ctx.GraphTime)}})
	},
}

func TestTick_ZeroElapsedTime(t *testing.T) {
	t.Run("graph time still moves forward", func(t *testing.T) {
		te := newTestEngine(t, Options{})
		first := te.tick(0)
		second := te.tick(0)
		third := te.tick(0)
		assert.Greater(t, second.Step.GraphTime, first.Step.GraphTime)
		assert.Greater(t, third.Step.GraphTime, second.Step.GraphTime)
	})

	t.Run("a pulse fires on one tick only", func(t *testing.T) {
		te := newTestEngine(t, Options{})
		te.add(t, "watch", "w")
		te.tick(0)

		require.NoError(t, te.Pulse(graph.Endpoint{Node: "w", Port: "pulse"}))
		te.tick(0)
		assert.Equal(t, pv.List{{pv.Bool(true)}}, te.outputs(t, "w"))

		te.tick(0)
		assert.Equal(t, pv.List{{pv.Bool(false)}}, te.outputs(t, "w"), "the same instant must not fire again")
	})

	t.Run("a repeating pulse is counted once", func(t *testing.T) {
		reg := registry.NewWith(&pulses.Module{}, &counter.Module{})
		repeating, ok := reg.Lookup("repeatingPulse")
		require.True(t, ok)
		count, ok := reg.Lookup("counter")
		require.True(t, ok)

		te := newTestEngine(t, Options{}, repeating, count)
		te.add(t, "repeatingPulse", "every")
		te.add(t, "counter", "n")
		te.connect(t, "every", "pulse", "n", "increase")
		require.NoError(t, te.SetInput(graph.Endpoint{Node: "every", Port: "frequency"}, pv.Values{pv.Number(1)}))

		te.tick(0)
		te.tick(time.Second)
		require.Equal(t, pv.List{{pv.Number(1)}}, te.outputs(t, "n"))

		te.tick(0)
		assert.Equal(t, pv.List{{pv.Number(1)}}, te.outputs(t, "n"))
	})

	t.Run("the start frame fires without elapsed time", func(t *testing.T) {
		te := newTestEngine(t, Options{}, startDef)
		te.add(t, "start", "s")
		te.add(t, "watch", "w")
		te.connect(t, "s", "pulse", "w", "pulse")

		te.tick(0)
		assert.Equal(t, pv.List{{pv.Bool(false)}}, te.outputs(t, "w"))
		te.tick(0)
		assert.Equal(t, pv.List{{pv.Bool(true)}}, te.outputs(t, "w"))
	})
}

func TestTick_Propagation(t *testing.T) {
	calls := 0
	counted := *incDef
	counted.Kind = "counted"
	counted.Eval = func(ctx *eval.Context, inputs, previous pv.List, state ephemeral.State) eval.Result {
		calls++
		return incDef.Eval(ctx, inputs, previous, state)
	}
	te := newTestEngine(t, Options{}, &counted)
	te.add(t, "value", "v")
	te.add(t, "counted", "c")
	te.connect(t, "v", "value", "c", "in")
	src := graph.Endpoint{Node: "v", Port: "value"}
	require.NoError(t, te.SetInput(src, pv.Values{pv.Number(2)}))

	t.Run("should evaluate new nodes upstream first", func(t *testing.T) {
		r := te.tick(0)
		assert.Equal(t, 2, r.Evaluated)
		assert.Equal(t, []string{"v", "c"}, r.Changed)
		assert.Equal(t, pv.List{{pv.Number(3)}}, te.outputs(t, "c"))
		assert.Equal(t, 1, calls)
	})

	t.Run("should skip clean nodes", func(t *testing.T) {
		r := te.tick(time.Second)
		assert.Zero(t, r.Evaluated)
		assert.Equal(t, 1, calls)
	})

	t.Run("should stop at equal outputs", func(t *testing.T) {
		require.NoError(t, te.SetInput(src, pv.Values{pv.Number(2)}))
		r := te.tick(time.Second)
		assert.Equal(t, 1, r.Evaluated)
		assert.Empty(t, r.Changed)
		assert.Equal(t, 1, calls, "downstream must not run when upstream did not change")
	})

	t.Run("should carry loops downstream", func(t *testing.T) {
		require.NoError(t, te.SetInput(src, pv.Values{pv.Number(1), pv.Number(5)}))
		te.tick(time.Second)
		assert.Equal(t, pv.List{{pv.Number(2), pv.Number(6)}}, te.outputs(t, "c"))
		assert.Equal(t, 2, calls)
	})

	t.Run("should keep the last value after disconnecting", func(t *testing.T) {
		require.True(t, te.Disconnect(graph.Endpoint{Node: "c", Port: "in"}))
		assert.False(t, te.Disconnect(graph.Endpoint{Node: "c", Port: "in"}))
		te.tick(time.Second)
		assert.Equal(t, pv.List{{pv.Number(2), pv.Number(6)}}, te.outputs(t, "c"))
	})
}

func TestTick_NoChangeShortCircuits(t *testing.T) {
	quiet := &registry.Definition{
		Kind:       "quiet",
		Inputs:     registry.Static(),
		Outputs:    registry.Static(numberPort("out")),
		AlwaysEval: true,
		Eval: func(*eval.Context, pv.List, pv.List, ephemeral.State) eval.Result {
			return eval.Result{Outputs: pv.List{{pv.Number(99)}}, NoChange: true}
		},
	}
	calls := 0
	counted := *incDef
	counted.Kind = "counted"
	counted.Eval = func(ctx *eval.Context, inputs, previous pv.List, state ephemeral.State) eval.Result {
		calls++
		return incDef.Eval(ctx, inputs, previous, state)
	}

	obs := newRecordingObserver()
	te := newTestEngine(t, Options{Observer: obs}, quiet, &counted)
	te.add(t, "quiet", "q")
	te.add(t, "counted", "c")
	te.connect(t, "q", "out", "c", "in")

	r := te.tick(0)
	assert.Equal(t, 2, r.Evaluated, "new nodes run once")
	require.Equal(t, 1, calls)

	for i := 0; i < 3; i++ {
		r = te.tick(time.Second)
		assert.Equal(t, 1, r.Evaluated, "only the always evaluated node runs")
		assert.Empty(t, r.Changed)
	}
	assert.Equal(t, 1, calls, "downstream must not run after a no change result")
	assert.Equal(t, pv.List{{pv.Number(0)}}, te.outputs(t, "q"), "outputs of a no change result are ignored")
	assert.Equal(t, 4, obs.evaluated["quiet"])
	assert.Zero(t, obs.changed["quiet"])
}

func TestPulse(t *testing.T) {
	t.Run("should fire on the next tick only", func(t *testing.T) {
		te := newTestEngine(t, Options{})
		te.add(t, "watch", "w")
		te.tick(0)

		require.NoError(t, te.Pulse(graph.Endpoint{Node: "w", Port: "pulse"}))
		te.tick(100 * time.Millisecond)
		assert.Equal(t, pv.List{{pv.Bool(true)}}, te.outputs(t, "w"))

		te.tick(100 * time.Millisecond)
		assert.Equal(t, pv.List{{pv.Bool(false)}}, te.outputs(t, "w"))
	})

	t.Run("should never fire at graph time zero", func(t *testing.T) {
		te := newTestEngine(t, Options{})
		te.add(t, "watch", "w")
		require.NoError(t, te.Pulse(graph.Endpoint{Node: "w", Port: "pulse"}))
		te.tick(0)
		assert.Equal(t, pv.List{{pv.Bool(false)}}, te.outputs(t, "w"))
	})

	t.Run("should reject non pulse inputs", func(t *testing.T) {
		te := newTestEngine(t, Options{})
		te.add(t, "value", "v")
		err := te.Pulse(graph.Endpoint{Node: "v", Port: "value"})
		require.ErrorIs(t, err, ErrNotPulsePort)
		err = te.Pulse(graph.Endpoint{Node: "nope", Port: "pulse"})
		require.ErrorIs(t, err, graph.ErrNodeNotFound)
	})
}

func TestRestart(t *testing.T) {
	te := newTestEngine(t, Options{})
	te.add(t, "count", "c")
	te.add(t, "watch", "w")
	te.tick(0)
	te.tick(time.Second)
	require.NoError(t, te.Pulse(graph.Endpoint{Node: "w", Port: "pulse"}))
	te.tick(time.Second)
	require.Equal(t, pv.List{{pv.Number(3)}}, te.outputs(t, "c"))

	te.Restart()

	assert.Equal(t, Step{}, te.Step())
	assert.Equal(t, pv.List{{pv.Number(0)}}, te.outputs(t, "c"), "outputs return to their defaults")
	w, _ := te.Node("w")
	in, _ := w.Input("pulse")
	assert.Equal(t, pv.Values{pv.Pulse(0)}, in.Values, "pulse inputs are disarmed")

	r := te.tick(5 * time.Second)
	assert.Equal(t, Step{GraphTime: 0, FrameCount: 1}, r.Step)
	assert.Equal(t, pv.List{{pv.Number(1)}}, te.outputs(t, "c"))
	assert.Equal(t, 2, r.Evaluated)
}

func TestResolveEffect(t *testing.T) {
	obs := newRecordingObserver()
	te := newTestEngine(t, Options{Observer: obs})
	te.add(t, "fetch", "f")
	te.add(t, "value", "v")

	r := te.tick(0)
	require.Len(t, r.Effects, 1)
	eff := r.Effects[0]
	assert.Equal(t, eval.EffectHTTPRequest, eff.Kind)
	assert.Equal(t, "f", eff.NodeID)
	assert.Equal(t, 1, eff.Frame)
	assert.Equal(t, []eval.EffectKind{eval.EffectHTTPRequest}, obs.effects)

	r = te.tick(time.Second)
	assert.Empty(t, r.Effects, "a clean node must not issue the effect again")

	require.True(t, te.ResolveEffect(eval.EffectResult{Effect: eff, Value: pv.Number(42)}))
	r = te.tick(time.Second)
	assert.Equal(t, []string{"f"}, r.Changed)
	assert.Equal(t, pv.List{{pv.Number(42)}}, te.outputs(t, "f"))
	assert.False(t, te.ResolveEffect(eval.EffectResult{Effect: eff, Value: pv.Number(7)}), "a duplicate result is dropped")

	t.Run("should drop results for nodes without a receiver", func(t *testing.T) {
		assert.False(t, te.ResolveEffect(eval.EffectResult{Effect: eval.Effect{NodeID: "v"}}))
	})

	t.Run("should drop results for removed nodes", func(t *testing.T) {
		require.NoError(t, te.RemoveNode("f"))
		assert.False(t, te.ResolveEffect(eval.EffectResult{Effect: eff, Value: pv.Number(1)}))
		r := te.tick(time.Second)
		assert.Zero(t, r.Evaluated)
	})
}

func TestTick_CycleIsTolerated(t *testing.T) {
	te := newTestEngine(t, Options{})
	te.add(t, "inc", "a")
	te.add(t, "inc", "b")
	te.connect(t, "a", "out", "b", "in")
	te.connect(t, "b", "out", "a", "in")
	require.Error(t, te.Graph().DetectCycles())

	r := te.tick(0)
	assert.Equal(t, 2, r.Evaluated, "each node runs at most once per tick")
	assert.Equal(t, pv.List{{pv.Number(1)}}, te.outputs(t, "a"))
	assert.Equal(t, pv.List{{pv.Number(2)}}, te.outputs(t, "b"))

	r = te.tick(time.Second)
	assert.Equal(t, 2, r.Evaluated, "the back edge carries over to the next tick")
	assert.Equal(t, pv.List{{pv.Number(3)}}, te.outputs(t, "a"))
	assert.Equal(t, pv.List{{pv.Number(4)}}, te.outputs(t, "b"))
}

func TestTick_DownstreamOfCycleSeesFreshValues(t *testing.T) {
	te := newTestEngine(t, Options{})
	te.add(t, "inc", "a")
	te.add(t, "inc", "b")
	te.add(t, "inc", "c")
	te.connect(t, "b", "out", "c", "in")
	te.connect(t, "c", "out", "b", "in")
	te.connect(t, "c", "out", "a", "in")

	assert.Equal(t, []string{"b", "c", "a"}, te.Graph().Order())

	te.tick(0)
	assert.Equal(t, pv.List{{pv.Number(1)}}, te.outputs(t, "b"))
	assert.Equal(t, pv.List{{pv.Number(2)}}, te.outputs(t, "c"))
	assert.Equal(t, pv.List{{pv.Number(3)}}, te.outputs(t, "a"), "a reads c from the same tick")
}

func TestChangeType(t *testing.T) {
	te := newTestEngine(t, Options{})
	te.add(t, "typed", "t")
	te.add(t, "inc", "i")
	te.connect(t, "t", "value", "i", "in")
	te.tick(0)

	require.NoError(t, te.ChangeType("t", pv.KindString))
	n, _ := te.Node("t")
	assert.Equal(t, pv.KindString, n.Type)
	_, ok := n.Output("text")
	assert.True(t, ok)
	_, ok = te.Graph().Upstream(graph.Endpoint{Node: "i", Port: "in"})
	assert.False(t, ok, "edge from a vanished port must be dropped")

	err := te.ChangeType("t", pv.KindColor)
	require.ErrorIs(t, err, ErrUnsupportedType)
	err = te.ChangeType("missing", pv.KindNumber)
	require.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestEvaluationFailures(t *testing.T) {
	t.Run("release mode keeps going after a panic", func(t *testing.T) {
		obs := newRecordingObserver()
		te := newTestEngine(t, Options{Observer: obs})
		te.add(t, "boom", "b")
		te.add(t, "arity", "a")

		var r TickReport
		require.NotPanics(t, func() { r = te.tick(0) })
		assert.Equal(t, 2, r.Evaluated)
		assert.Empty(t, r.Changed)
		assert.Equal(t, pv.List{{pv.Number(0)}}, te.outputs(t, "a"), "wrong arity keeps the old outputs")
		assert.Equal(t, 1, obs.evaluated["boom"])
		assert.Zero(t, obs.changed["boom"])
		assert.Equal(t, 1, obs.ticks)
	})

	t.Run("debug mode panics", func(t *testing.T) {
		te := newTestEngine(t, Options{Debug: true})
		te.add(t, "boom", "b")
		assert.Panics(t, func() { te.tick(0) })
	})

	t.Run("debug mode panics on wrong arity", func(t *testing.T) {
		te := newTestEngine(t, Options{Debug: true})
		te.add(t, "arity", "a")
		assert.Panics(t, func() { te.tick(0) })
	})
}

func TestEditErrors(t *testing.T) {
	te := newTestEngine(t, Options{})
	te.add(t, "value", "v")
	te.add(t, "inc", "i")
	te.connect(t, "v", "value", "i", "in")

	_, err := te.AddNode("nope", "", pv.KindNone)
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = te.AddNode("value", "", pv.KindString)
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = te.AddNode("value", "v", pv.KindNone)
	require.ErrorIs(t, err, graph.ErrDuplicateNode)

	n, err := te.AddNode("value", "", pv.KindNone)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)

	err = te.SetInput(graph.Endpoint{Node: "i", Port: "in"}, pv.Values{pv.Number(1)})
	require.ErrorIs(t, err, ErrInputConnected)

	err = te.SetInput(graph.Endpoint{Node: "v", Port: "value"}, pv.Values{pv.String("1")})
	require.ErrorIs(t, err, ErrValueKind)

	err = te.SetInput(graph.Endpoint{Node: "v", Port: "missing"}, pv.Values{pv.Number(1)})
	require.ErrorIs(t, err, graph.ErrPortNotFound)

	err = te.Connect(graph.Endpoint{Node: "v", Port: "value"}, graph.Endpoint{Node: "v", Port: "value"})
	require.ErrorIs(t, err, graph.ErrSelfReference)
}
