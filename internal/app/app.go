package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/stitchgrid/internal/ctxlog"
	"github.com/specialistvlad/stitchgrid/internal/document"
	"github.com/specialistvlad/stitchgrid/internal/engine"
	"github.com/specialistvlad/stitchgrid/internal/inmemorystore"
	"github.com/specialistvlad/stitchgrid/internal/metrics"
	"github.com/specialistvlad/stitchgrid/internal/nodestore"
	"github.com/specialistvlad/stitchgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	metrics    *metrics.Metrics
	engine     *engine.Engine
	store      nodestore.Store
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the graph
// document and builds the engine. Invalid documents and registry problems
// are fatal startup errors and panic.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All node modules registered.", "count", len(modules), "kinds", len(reg.Kinds()))

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A mismatch between module code and its declarations is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	doc, err := document.Load(ctx, cfg.GraphPath)
	if err != nil {
		panic(fmt.Errorf("failed to load graph document: %w", err))
	}

	m := metrics.New()
	eng := engine.New(reg, engine.Options{Logger: logger, Debug: cfg.Debug, Observer: m})
	if err := doc.Build(ctx, eng); err != nil {
		panic(fmt.Errorf("failed to build graph: %w", err))
	}
	logger.Info("Graph loaded.", "nodes", eng.Graph().Len(), "edges", len(eng.Graph().Edges()))
	if err := eng.Graph().DetectCycles(); err != nil {
		logger.Warn("Graph contains a cycle; back edges read the previous tick's values.", "error", err)
	}

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		metrics:  m,
		engine:   eng,
		store:    inmemorystore.New(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Engine returns the application's engine. It must not be used while Run is
// in progress.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Store returns the node output store fed by the session.
func (a *App) Store() nodestore.Store {
	return a.store
}
