package inmemorystore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stitchgrid/internal/nodestore"
)

func snap(id string, frame int) nodestore.Snapshot {
	return nodestore.Snapshot{
		ID:      id,
		Kind:    "counter",
		Frame:   frame,
		Outputs: map[string][]any{"count": {float64(frame)}},
	}
}

func TestPutGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "count")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, snap("count", 1)))
	require.NoError(t, s.Put(ctx, snap("count", 2)))

	got, ok, err := s.Get(ctx, "count")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap("count", 2), got)
}

func TestListDeleteReset(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(ctx, snap(id, 1)))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, s.Delete(ctx, "b"))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.Reset(ctx))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Put(ctx, snap(fmt.Sprintf("node-%d", i%10), i)))
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.List(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 10)
}
