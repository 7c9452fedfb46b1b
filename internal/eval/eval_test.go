package eval

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextInvalid(t *testing.T) {
	t.Parallel()

	t.Run("release logs a warning", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := &Context{NodeID: "n1", NodeKind: "and", Logger: slog.New(slog.NewTextHandler(&buf, nil))}

		assert.NotPanics(t, func() { ctx.Invalid("empty input", "port", 0) })
		assert.Contains(t, buf.String(), "empty input")
		assert.Contains(t, buf.String(), "node=n1")
	})

	t.Run("debug panics", func(t *testing.T) {
		ctx := &Context{NodeID: "n1", NodeKind: "and", Debug: true}
		assert.Panics(t, func() { ctx.Invalid("empty input") })
	})
}

func TestResults(t *testing.T) {
	t.Parallel()

	r := Unchanged(Effect{Kind: EffectRestart})
	assert.True(t, r.NoChange)
	assert.Len(t, r.Effects, 1)
	assert.False(t, Outputs(nil).NoChange)
}
