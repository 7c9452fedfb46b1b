package ephemeral

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
)

func TestPreviousValue(t *testing.T) {
	t.Parallel()

	p := NewPreviousValue().(*PreviousValue)
	_, ok := p.Get(0)
	require.False(t, ok)

	p.Set(0, pv.Bool(true))
	p.Set(2, pv.Number(3))
	v, ok := p.Get(2)
	require.True(t, ok)
	assert.Equal(t, pv.Number(3), v)

	p.Reset()
	_, ok = p.Get(0)
	assert.False(t, ok)
}

func TestQueue_Bounded(t *testing.T) {
	t.Parallel()

	q := NewQueue().(*Queue)
	for i := 1; i <= 5; i++ {
		q.Push(pv.Number(float64(i)), 3)
	}
	assert.Equal(t, pv.Values{pv.Number(3), pv.Number(4), pv.Number(5)}, q.Values)

	q.Push(pv.Number(6), 0)
	assert.Len(t, q.Values, 4)

	q.Reset()
	assert.Empty(t, q.Values)
}

func TestSmoothValue(t *testing.T) {
	t.Parallel()

	s := NewSmoothValue().(*SmoothValue)
	assert.Equal(t, 10.0, s.Step(0, 10, 0.5))
	assert.Equal(t, 15.0, s.Step(0, 20, 0.5))
	assert.Equal(t, 20.0, s.Step(0, 20, 0), "zero hysteresis jumps to target")
	assert.Equal(t, 20.0, s.Step(0, 100, 1), "full hysteresis never moves")
	assert.Equal(t, 1.0, s.Step(1, 1, 0.5), "indexes are independent")
}

func TestRequest_Receive(t *testing.T) {
	t.Parallel()

	r := NewRequest().(*Request)
	var _ Receiver = r

	r.Begin(1)
	assert.True(t, r.Loading(1))
	_, ok := r.Result(1)
	assert.False(t, ok)

	assert.False(t, r.Receive(0, pv.Number(1), nil), "index 0 is not loading")
	_, ok = r.Result(0)
	assert.False(t, ok)

	boom := errors.New("boom")
	assert.True(t, r.Receive(1, nil, boom))
	assert.False(t, r.Loading(1))
	res, ok := r.Result(1)
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, boom)

	assert.False(t, r.Receive(1, pv.Number(2), nil), "a second response is ignored")

	r.Begin(1)
	r.Reset()
	_, ok = r.Result(1)
	assert.False(t, ok)
	assert.False(t, r.Receive(1, pv.Number(3), nil), "responses issued before a reset are stale")
}
