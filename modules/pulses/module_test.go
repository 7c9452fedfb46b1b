package pulses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stitchgrid/internal/eval"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/testutil"
)

func TestPulse_EdgeDetection(t *testing.T) {
	t.Parallel()

	h := testutil.NewNodeHarness(t, &Module{}, "pulse", pv.KindNone)

	h.Set("on", pv.Bool(true))
	h.Run(1, 2)
	assert.Equal(t, pv.Values{pv.Pulse(1)}, h.Output("turned_on"))

	res := h.Run(2, 3)
	assert.True(t, res.NoChange, "a steady value does not pulse")

	h.Set("on", pv.Bool(false))
	h.Run(3, 4)
	assert.Equal(t, pv.Values{pv.Pulse(1)}, h.Output("turned_on"))
	assert.Equal(t, pv.Values{pv.Pulse(3)}, h.Output("turned_off"))

	h.Node.ResetState()
	res = h.Run(4, 5)
	assert.True(t, res.NoChange, "false after a reset is no transition")
}

func TestPulseOnChange(t *testing.T) {
	t.Parallel()

	h := testutil.NewNodeHarness(t, &Module{}, "pulseOnChange", pv.KindString)
	h.Set("value", pv.String("a"))
	res := h.Run(1, 2)
	require.True(t, res.NoChange, "the first value is only remembered")

	h.Set("value", pv.String("b"))
	h.Run(2, 3)
	assert.Equal(t, pv.Values{pv.Pulse(2)}, h.Output("pulse"))

	res = h.Run(3, 4)
	assert.True(t, res.NoChange)
	assert.Equal(t, pv.Values{pv.Pulse(2)}, h.Output("pulse"))
}

func TestFlip(t *testing.T) {
	t.Parallel()

	assert.True(t, Flip(false, true, true, true), "flip wins")
	assert.False(t, Flip(true, true, true, false))
	assert.True(t, Flip(true, false, true, true), "on and off keep the value")
	assert.False(t, Flip(false, false, true, true))
	assert.True(t, Flip(false, false, true, false))
	assert.False(t, Flip(true, false, false, true))
}

func TestFlipSwitch_FlipPriority(t *testing.T) {
	t.Parallel()

	h := testutil.NewNodeHarness(t, &Module{}, "flipSwitch", pv.KindNone)
	h.Set("turn_on", pv.Pulse(1))
	h.Run(1, 2)
	require.Equal(t, pv.Values{pv.Bool(true)}, h.Output("on"))

	h.Set("flip", pv.Pulse(2)).Set("turn_on", pv.Pulse(2)).Set("turn_off", pv.Pulse(2))
	h.Run(2, 3)
	assert.Equal(t, pv.Values{pv.Bool(false)}, h.Output("on"))

	res := h.Run(3, 4)
	assert.True(t, res.NoChange)
}

func TestRepeatingPulse_Frequency(t *testing.T) {
	t.Parallel()

	h := testutil.NewNodeHarness(t, &Module{}, "repeatingPulse", pv.KindNone)
	h.Set("frequency", pv.Number(2))

	want := map[float64]pv.Pulse{0: 0, 0.5: 0, 1: 0, 1.5: 0, 2: 2, 3: 2, 3.5: 2, 4: 4, 5: 4}
	fires := map[float64]bool{2: true, 4: true}
	frame := 1
	for _, now := range []float64{0, 0.5, 1, 1.5, 2, 3, 3.5, 4, 5} {
		res := h.Run(now, frame)
		frame++
		assert.Equal(t, pv.Values{want[now]}, h.Output("pulse"), "at %v", now)
		assert.Equal(t, !fires[now], res.NoChange, "at %v", now)
	}
}

func TestRepeatingPulse_LoopOfFrequencies(t *testing.T) {
	t.Parallel()

	h := testutil.NewNodeHarness(t, &Module{}, "repeatingPulse", pv.KindNone)
	h.Set("frequency", pv.Number(2), pv.Number(3))
	h.Run(2, 3)
	assert.Equal(t, pv.Values{pv.Pulse(2), pv.Pulse(0)}, h.Output("pulse"))
}

func TestWhenPrototypeStarts(t *testing.T) {
	t.Parallel()

	h := testutil.NewNodeHarness(t, &Module{}, "whenPrototypeStarts", pv.KindNone)

	res := h.Run(0, 1)
	assert.True(t, res.NoChange)
	assert.Equal(t, pv.Values{pv.Pulse(0)}, h.Output("pulse"))

	h.Run(0.016, 2)
	assert.Equal(t, pv.Values{pv.Pulse(0.016)}, h.Output("pulse"))

	res = h.Run(0.032, 3)
	assert.True(t, res.NoChange)
}

func TestRestartPrototype(t *testing.T) {
	t.Parallel()

	h := testutil.NewNodeHarness(t, &Module{}, "restartPrototype", pv.KindNone)
	assert.Empty(t, h.Node.Outputs)

	res := h.Run(1, 2)
	assert.True(t, res.NoChange)
	assert.Empty(t, res.Effects)

	h.Set("restart", pv.Pulse(0), pv.Pulse(2))
	res = h.Run(2, 3)
	assert.True(t, res.NoChange)
	require.Len(t, res.Effects, 1)
	assert.Equal(t, eval.Effect{Kind: eval.EffectRestart, Index: 1}, res.Effects[0])
}
