package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
)

func TestShouldPulse(t *testing.T) {
	t.Parallel()

	assert.False(t, ShouldPulse(0, 0), "zero never fires")
	assert.True(t, ShouldPulse(1.5, 1.5))
	assert.False(t, ShouldPulse(1.5, 1.6), "stale pulse does not fire again")
	assert.False(t, ShouldPulse(0, 2))
}

func TestFired(t *testing.T) {
	t.Parallel()

	assert.True(t, Fired(pv.Pulse(3), 3))
	assert.False(t, Fired(pv.Number(3), 3))
	assert.False(t, Fired(nil, 3))
	assert.True(t, AnyFired(pv.Values{pv.Pulse(1), pv.Pulse(3)}, 3))
	assert.False(t, AnyFired(nil, 3))
}

func TestShouldRepeat(t *testing.T) {
	t.Parallel()

	assert.False(t, ShouldRepeat(10, 0, 0))
	assert.False(t, ShouldRepeat(10, 0, -1))
	assert.False(t, ShouldRepeat(1.9, 0, 2))
	assert.True(t, ShouldRepeat(2, 0, 2))
	assert.True(t, ShouldRepeat(4.5, 2, 2))
}

func TestIsPrototypeStartFrame(t *testing.T) {
	t.Parallel()

	assert.False(t, IsPrototypeStartFrame(1))
	assert.True(t, IsPrototypeStartFrame(2))
	assert.False(t, IsPrototypeStartFrame(3))
}
