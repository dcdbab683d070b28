// Package wiring assembles the application layer from configuration.
package wiring

import (
	"log/slog"
	"time"

	"github.com/felixgeelhaar/specforge/internal/infrastructure/analyze"
	"github.com/felixgeelhaar/specforge/internal/infrastructure/config"
	"github.com/felixgeelhaar/specforge/internal/infrastructure/deploy"
	"github.com/felixgeelhaar/specforge/internal/infrastructure/generate"
	"github.com/felixgeelhaar/specforge/pkg/application"
	"github.com/felixgeelhaar/specforge/pkg/domain/events"
	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/storage"
)

// AppServices exposes the wired application layer.
type AppServices struct {
	Store        *storage.MemoryStore
	Bus          *events.Bus
	Projects     *application.ProjectService
	Orchestrator *application.Orchestrator
}

// BuildAppServices constructs the store, event bus, collaborators and
// services for the given configuration.
func BuildAppServices(cfg *config.Config, logger *slog.Logger) *AppServices {
	store := storage.NewMemoryStore()

	queueSize := cfg.Server.EventQueueSize
	if queueSize <= 0 {
		queueSize = events.DefaultQueueSize
	}
	bus := events.NewBusWithQueueSize(queueSize)

	resilience := application.ResilienceConfig{
		MaxAttempts:  cfg.Pipeline.MaxAttempts,
		InitialDelay: time.Duration(cfg.Pipeline.RetryDelay),
		PhaseTimeout: time.Duration(cfg.Pipeline.PhaseTimeout),
	}

	var deployer pipeline.Deployer
	if cfg.Vercel.Token != "" {
		deployer = deploy.NewVercelDeployer(cfg.Vercel.Token, cfg.Vercel.Team)
	} else {
		logger.Info("no vercel token configured, using mock deployer")
		deployer = deploy.NewMockDeployer()
	}

	orch := application.NewOrchestrator(
		store,
		bus,
		application.NewResilientAnalyzer(analyze.New(), resilience),
		application.NewResilientGenerator(generate.New(cfg.Pipeline.OutputDir), resilience),
		application.NewResilientDeployer(deployer, resilience),
	)
	orch.SetLogger(logger)

	return &AppServices{
		Store:        store,
		Bus:          bus,
		Projects:     application.NewProjectService(store),
		Orchestrator: orch,
	}
}
