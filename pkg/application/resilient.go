package application

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

// ResilienceConfig parameterizes the collaborator decorators layered on top
// of the phase runner: a per-phase deadline plus bounded retry for failure
// kinds that may succeed on a second attempt (timeout, unavailable).
type ResilienceConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	PhaseTimeout time.Duration
}

// DefaultResilienceConfig mirrors the defaults used for slow external work:
// one retry with exponential backoff, five minutes per phase.
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxAttempts:  2,
		InitialDelay: time.Second,
		PhaseTimeout: 5 * time.Minute,
	}
}

// execute runs fn under the configured deadline, retrying only when the
// first failure is a retryable collaborator kind. A deadline miss surfaces
// as a timeout-kind CollaboratorError via pipeline.Classify.
func execute[T any](ctx context.Context, cfg ResilienceConfig, phase string, fn func(context.Context) (T, error)) (T, error) {
	t := timeout.New[T](timeout.Config{DefaultTimeout: cfg.PhaseTimeout})
	return t.Execute(ctx, cfg.PhaseTimeout, func(ctx context.Context) (T, error) {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		cerr := pipeline.Classify(phase, err)
		if cfg.MaxAttempts <= 1 || !cerr.Kind.Retryable() {
			return res, cerr
		}
		r := retry.New[T](retry.Config{
			MaxAttempts:   cfg.MaxAttempts - 1,
			InitialDelay:  cfg.InitialDelay,
			BackoffPolicy: retry.BackoffExponential,
		})
		return r.Do(ctx, func(ctx context.Context) (T, error) {
			res, err := fn(ctx)
			if err != nil {
				return res, pipeline.Classify(phase, err)
			}
			return res, nil
		})
	})
}

// ResilientAnalyzer decorates an Analyzer with timeout and retry.
type ResilientAnalyzer struct {
	inner pipeline.Analyzer
	cfg   ResilienceConfig
}

// NewResilientAnalyzer wraps inner with the given resilience config.
func NewResilientAnalyzer(inner pipeline.Analyzer, cfg ResilienceConfig) *ResilientAnalyzer {
	return &ResilientAnalyzer{inner: inner, cfg: cfg}
}

func (a *ResilientAnalyzer) Analyze(ctx context.Context, req pipeline.AnalysisRequest) (*pipeline.AnalysisResult, error) {
	return execute(ctx, a.cfg, project.PhaseSpecAnalysis, func(ctx context.Context) (*pipeline.AnalysisResult, error) {
		return a.inner.Analyze(ctx, req)
	})
}

// ResilientGenerator decorates a Generator with timeout and retry.
type ResilientGenerator struct {
	inner pipeline.Generator
	cfg   ResilienceConfig
}

// NewResilientGenerator wraps inner with the given resilience config.
func NewResilientGenerator(inner pipeline.Generator, cfg ResilienceConfig) *ResilientGenerator {
	return &ResilientGenerator{inner: inner, cfg: cfg}
}

func (g *ResilientGenerator) Generate(ctx context.Context, req pipeline.GenerationRequest) (*project.GeneratedProject, error) {
	return execute(ctx, g.cfg, project.PhaseCodeGeneration, func(ctx context.Context) (*project.GeneratedProject, error) {
		return g.inner.Generate(ctx, req)
	})
}

// ResilientDeployer decorates a Deployer with timeout and retry.
type ResilientDeployer struct {
	inner pipeline.Deployer
	cfg   ResilienceConfig
}

// NewResilientDeployer wraps inner with the given resilience config.
func NewResilientDeployer(inner pipeline.Deployer, cfg ResilienceConfig) *ResilientDeployer {
	return &ResilientDeployer{inner: inner, cfg: cfg}
}

func (d *ResilientDeployer) Deploy(ctx context.Context, req pipeline.DeploymentRequest) (*project.DeploymentResult, error) {
	return execute(ctx, d.cfg, project.PhaseDeployment, func(ctx context.Context) (*project.DeploymentResult, error) {
		return d.inner.Deploy(ctx, req)
	})
}
