package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stitchgrid/internal/app/apptest"
)

func TestRun_PropagatesThroughGraph(t *testing.T) {
	t.Parallel()

	result := apptest.RunGraphDocument(t, `
node "whenPrototypeStarts" "start" {}

node "counter" "count" {
  inputs {
    increase = node.start.pulse
  }
}

node "add" "sum" {
  inputs {
    a = node.count.count
    b = 10
  }
}

node "greaterThan" "big" {
  inputs {
    a = node.sum.result
    b = 10
  }
}
`, 4)

	apptest.AssertNodeOutput(t, result, "count", "count", []any{1.0})
	apptest.AssertNodeOutput(t, result, "sum", "result", []any{11.0})
	apptest.AssertNodeOutput(t, result, "big", "result", []any{true})
	assert.Equal(t, 4, result.App.Engine().Step().FrameCount)
}

func TestRun_LoopsBroadcast(t *testing.T) {
	t.Parallel()

	result := apptest.RunGraphDocument(t, `
node "value" "numbers" {
  inputs {
    value = [1, 2, 3]
  }
}

node "multiply" "scaled" {
  inputs {
    a = node.numbers.value
    b = 2
  }
}

node "loopCount" "n" {
  inputs {
    loop = node.scaled.result
  }
}
`, 2)

	apptest.AssertNodeOutput(t, result, "scaled", "result", []any{2.0, 4.0, 6.0})
	apptest.AssertNodeOutput(t, result, "n", "count", []any{3.0})
}

func TestRun_InvalidDocument(t *testing.T) {
	t.Parallel()

	result := apptest.RunGraphDocument(t, `
node "counter" "count" {
  inputs {
    increase = node.missing.pulse
  }
}
`, 1)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "node not found")
	assert.Nil(t, result.App)
}
