// Package apptest runs whole graph documents through the application for
// integration tests.
package apptest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stitchgrid/internal/app"
	"github.com/specialistvlad/stitchgrid/internal/registry"
	"github.com/specialistvlad/stitchgrid/internal/testutil"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunGraphTest writes files into a temporary directory, loads them as the
// graph document and runs a session for frames ticks. A startup panic is
// reported through Err.
func RunGraphTest(t *testing.T, files map[string]string, frames int, modules ...registry.Module) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := &app.Config{
		GraphPath:     dir,
		FPS:           240,
		MaxFrames:     frames,
		LogLevel:      "debug",
		LogFormat:     "text",
		EffectWorkers: 2,
	}
	logBuffer := &testutil.SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, cfg, modules...)
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background())
	if os.Getenv("STITCHGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	return &HarnessResult{LogOutput: logBuffer.String(), Err: runErr, App: testApp}
}

// RunGraphDocument runs a single graph document for frames ticks with the
// core modules.
func RunGraphDocument(t *testing.T, doc string, frames int) *HarnessResult {
	t.Helper()
	return RunGraphTest(t, map[string]string{"main.hcl": doc}, frames)
}
