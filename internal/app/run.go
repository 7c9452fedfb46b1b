package app

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/stitchgrid/internal/ctxlog"
	"github.com/specialistvlad/stitchgrid/internal/document"
	"github.com/specialistvlad/stitchgrid/internal/effect"
	"github.com/specialistvlad/stitchgrid/internal/effect/httpeffect"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/preview"
	"github.com/specialistvlad/stitchgrid/internal/session"
)

// Run drives the prototype session until ctx is cancelled, the configured
// frame count or duration is reached.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	if a.config.ExportPath != "" {
		return a.export()
	}

	if a.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Duration)
		defer cancel()
	}

	a.healthCheckServer()
	defer func() {
		if err := a.closeHealthCheckServer(); err != nil {
			a.logger.Warn("Health check server did not close cleanly.", "error", err)
		}
	}()

	sink, err := a.previewSink(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect preview relay: %w", err)
	}

	dispatcher := effect.NewDispatcher(ctx, a.config.EffectWorkers)
	dispatcher.Handle(eval.EffectHTTPRequest, httpeffect.New(httpeffect.Options{
		RetryMax: a.config.HTTPRetries,
		Timeout:  a.config.HTTPTimeout,
		Logger:   a.logger.With("component", "httpeffect"),
	}))

	s := session.New(ctx, a.engine, session.Options{
		FPS:        a.config.FPS,
		MaxFrames:  a.config.MaxFrames,
		Dispatcher: dispatcher,
		Store:      a.store,
		Sink:       sink,
		Observer:   a.metrics,
	})
	defer func() {
		if err := s.Close(); err != nil {
			a.logger.Warn("Session did not close cleanly.", "error", err)
		}
	}()

	if err := s.Run(ctx); err != nil {
		return fmt.Errorf("session failed: %w", err)
	}
	a.logger.Debug("App.Run method finished.", "frame", a.engine.Step().FrameCount)
	return nil
}

func (a *App) previewSink(ctx context.Context) (preview.Sink, error) {
	if a.config.PreviewURL == "" {
		a.logger.Debug("Preview relay disabled.")
		return preview.Discard{}, nil
	}
	return preview.DialSocket(ctx, preview.SocketOptions{
		URL:       a.config.PreviewURL,
		Namespace: a.config.PreviewNamespace,
	})
}

// export writes the loaded graph back out as a normalized document.
func (a *App) export() error {
	data := document.Export(a.engine)
	if a.config.ExportPath == "-" {
		if _, err := a.outW.Write(data); err != nil {
			return fmt.Errorf("failed to export graph: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(a.config.ExportPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to export graph: %w", err)
	}
	a.logger.Info("Graph exported.", "path", a.config.ExportPath, "bytes", len(data))
	return nil
}
