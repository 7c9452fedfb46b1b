package apptest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertNodeOutput checks the last published loop of an output port.
func AssertNodeOutput(t *testing.T, result *HarnessResult, nodeID, port string, want []any) {
	t.Helper()
	require.NoError(t, result.Err)
	require.NotNil(t, result.App)

	snap, ok, err := result.App.Store().Get(context.Background(), nodeID)
	require.NoError(t, err)
	require.True(t, ok, "node %q was never published", nodeID)
	got, ok := snap.Outputs[port]
	require.True(t, ok, "node %q has no output %q", nodeID, port)
	assert.Equal(t, want, got, "output %s.%s", nodeID, port)
}
