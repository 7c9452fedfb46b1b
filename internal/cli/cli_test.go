package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		args      []string
		wantExit  bool
		wantCode  int
		checkPath string
	}{
		{name: "positional path", args: []string{"graph.hcl"}, checkPath: "graph.hcl"},
		{name: "long flag wins", args: []string{"--graph", "a.hcl", "b.hcl"}, checkPath: "a.hcl"},
		{name: "shorthand", args: []string{"-g", "dir"}, checkPath: "dir"},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no path", args: nil, wantExit: true},
		{name: "unknown flag", args: []string{"--nope"}, wantCode: 2},
		{name: "bad level", args: []string{"--log-level", "loud", "g.hcl"}, wantCode: 2},
		{name: "bad fps", args: []string{"--fps", "0", "g.hcl"}, wantCode: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tc.args, out)

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.checkPath, cfg.GraphPath)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, _, err := Parse([]string{"--log-format", "TEXT", "--frames", "10", "--duration", "2s", "g.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 60.0, cfg.FPS)
	assert.Equal(t, 10, cfg.MaxFrames)
	assert.Equal(t, 2*time.Second, cfg.Duration)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.EffectWorkers)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.PreviewURL)
	assert.Empty(t, cfg.ExportPath)
}

func TestParse_Export(t *testing.T) {
	t.Parallel()

	cfg, exit, err := Parse([]string{"--export", "-", "g.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, "-", cfg.ExportPath)
	assert.Equal(t, "g.hcl", cfg.GraphPath)
}
