package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/specforge/pkg/domain/events"
	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

// maxFileEvents caps per-run file_generated event publication.
const maxFileEvents = 10

// Orchestrator sequences the three pipeline phases for one project,
// implements the clarification pause/resume protocol and cancellation, and
// guarantees at most one in-flight run per project id.
//
// It holds no project state across invocations: every step reads from and
// writes to the store. Collaborators, store and bus are injected.
type Orchestrator struct {
	store     project.Store
	bus       *events.Bus
	runner    *PhaseRunner
	analyzer  pipeline.Analyzer
	generator pipeline.Generator
	deployer  pipeline.Deployer
	logger    *slog.Logger
	now       func() time.Time

	// schedule launches the post-clarification continuation as background
	// work. Tests replace it with a synchronous variant.
	schedule func(func())

	mu      sync.Mutex
	running map[string]struct{}
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(store project.Store, bus *events.Bus, analyzer pipeline.Analyzer, generator pipeline.Generator, deployer pipeline.Deployer) *Orchestrator {
	return &Orchestrator{
		store:     store,
		bus:       bus,
		runner:    NewPhaseRunner(store, bus),
		analyzer:  analyzer,
		generator: generator,
		deployer:  deployer,
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
		schedule:  func(fn func()) { go fn() },
		running:   make(map[string]struct{}),
	}
}

// SetLogger replaces the default logger.
func (o *Orchestrator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		o.logger = logger
	}
}

// acquire takes the per-project run token. The decision "should I start
// running" is made atomically with recording that a run has started; the
// store's atomic update alone cannot provide that.
func (o *Orchestrator) acquire(projectID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, active := o.running[projectID]; active {
		return false
	}
	o.running[projectID] = struct{}{}
	return true
}

func (o *Orchestrator) release(projectID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.running, projectID)
}

// Run executes the pipeline for a pending project. Calling Run while a run
// is active, or on a project in any status other than pending, is a no-op
// that returns the current snapshot.
//
// Run blocks until the pipeline reaches a terminal status or suspends for
// clarifications; the dispatch layer schedules it as background work.
func (o *Orchestrator) Run(ctx context.Context, projectID string) (*project.Project, error) {
	if !o.acquire(projectID) {
		return o.store.Get(ctx, projectID)
	}
	held := true
	defer func() {
		if held {
			o.release(projectID)
		}
	}()

	p, err := o.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status != project.StatusPending {
		return p, nil
	}

	o.logger.Info("pipeline started", "project_id", projectID, "name", p.Name)

	if err := o.runner.Run(ctx, projectID, project.PhaseSpecAnalysis, project.StatusAnalyzing, project.EventAnalyze, o.analysisWork); err != nil {
		return o.settle(ctx, projectID, err)
	}

	p, err = o.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !p.RequiredAnswered() {
		// The token must be free before the clarifying status is readable:
		// any SubmitClarifications that sees clarifying and advances the
		// record to generating must be able to take the token and schedule
		// the resume.
		o.release(projectID)
		held = false
		p, err = o.store.Update(ctx, projectID, func(p *project.Project) error {
			if p.Status == project.StatusCancelled {
				return project.ErrCancelled
			}
			return p.Transition(project.EventClarify, o.now())
		})
		if err != nil {
			return o.settle(ctx, projectID, err)
		}
		o.logger.Info("pipeline awaiting clarifications", "project_id", projectID, "pending", len(p.PendingClarifications()))
		return p, nil
	}

	return o.generateAndDeploy(ctx, projectID)
}

// Cancel moves a non-terminal project to cancelled. The status change is
// immediately visible in the store; the active run, if any, discards its
// in-flight result at the next phase boundary.
func (o *Orchestrator) Cancel(ctx context.Context, projectID string) (*project.Project, error) {
	p, err := o.store.Update(ctx, projectID, func(p *project.Project) error {
		if p.Status.IsTerminal() {
			return project.ErrTerminal
		}
		if err := p.Transition(project.EventCancel, o.now()); err != nil {
			return err
		}
		// Pending questions die with the run.
		p.Clarifications = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.logger.Info("pipeline cancelled", "project_id", projectID)
	return p, nil
}

// Clarifications returns the unanswered questions; empty unless the project
// is clarifying.
func (o *Orchestrator) Clarifications(ctx context.Context, projectID string) ([]project.ClarificationQuestion, error) {
	p, err := o.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return p.PendingClarifications(), nil
}

// SubmitClarifications merges answers into the project's questions. Unknown
// question ids reject the whole batch; answering twice overwrites. Once all
// required questions are answered the project transitions to generating and
// the pipeline resumes from code generation; spec analysis is never re-run.
func (o *Orchestrator) SubmitClarifications(ctx context.Context, projectID string, answers []project.ClarificationAnswer) (*project.Project, error) {
	p, err := o.store.Update(ctx, projectID, func(p *project.Project) error {
		if p.Status.IsTerminal() {
			return project.ErrTerminal
		}
		if p.Status != project.StatusClarifying {
			return project.ErrNotClarifying
		}
		for _, a := range answers {
			if err := p.AnswerClarification(a.QuestionID, a.Answer); err != nil {
				return err
			}
		}
		if p.RequiredAnswered() {
			return p.Transition(project.EventGenerate, o.now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.Status == project.StatusGenerating && o.acquire(projectID) {
		o.schedule(func() {
			defer o.release(projectID)
			if _, err := o.generateAndDeploy(context.Background(), projectID); err != nil {
				o.logger.Error("pipeline resume failed", "project_id", projectID, "error", err)
			}
		})
	}
	return p, nil
}

// generateAndDeploy runs the code-generation and deployment phases. The
// caller must hold the run token.
func (o *Orchestrator) generateAndDeploy(ctx context.Context, projectID string) (*project.Project, error) {
	if err := o.runner.Run(ctx, projectID, project.PhaseCodeGeneration, project.StatusGenerating, project.EventGenerate, o.generationWork); err != nil {
		return o.settle(ctx, projectID, err)
	}

	p, err := o.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !p.Options.AutoDeploy {
		p, err = o.store.Update(ctx, projectID, func(p *project.Project) error {
			if p.Status == project.StatusCancelled {
				return project.ErrCancelled
			}
			if err := p.SkipPhase(project.PhaseDeployment, o.now()); err != nil {
				return err
			}
			return p.Transition(project.EventComplete, o.now())
		})
		if err != nil {
			return o.settle(ctx, projectID, err)
		}
		o.logger.Info("pipeline completed without deployment", "project_id", projectID)
		return p, nil
	}

	if err := o.runner.Run(ctx, projectID, project.PhaseDeployment, project.StatusDeploying, project.EventDeploy, o.deploymentWork); err != nil {
		return o.settle(ctx, projectID, err)
	}

	p, err = o.store.Update(ctx, projectID, func(p *project.Project) error {
		if p.Status == project.StatusCancelled {
			return project.ErrCancelled
		}
		return p.Transition(project.EventComplete, o.now())
	})
	if err != nil {
		return o.settle(ctx, projectID, err)
	}
	if p.Deployment != nil {
		o.bus.Publish(events.DeploymentComplete(projectID, p.Deployment.URL))
	}
	o.logger.Info("pipeline completed", "project_id", projectID, "status", string(p.Status))
	return p, nil
}

// settle converts a pipeline step error into the run's outcome. A cancelled
// run is not a failure: the current snapshot is returned without error.
// Collaborator failures were already recorded by the runner and are passed
// through to the caller.
func (o *Orchestrator) settle(ctx context.Context, projectID string, runErr error) (*project.Project, error) {
	if errors.Is(runErr, project.ErrCancelled) {
		o.logger.Info("pipeline run discarded after cancellation", "project_id", projectID)
		p, err := o.store.Get(ctx, projectID)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	o.logger.Error("pipeline failed", "project_id", projectID, "error", runErr)
	p, err := o.store.Get(ctx, projectID)
	if err != nil {
		return nil, runErr
	}
	return p, runErr
}

func (o *Orchestrator) analysisWork(ctx context.Context, snapshot *project.Project) (*PhaseResult, error) {
	result, err := o.analyzer.Analyze(ctx, pipeline.AnalysisRequest{
		ProjectName: snapshot.Name,
		Format:      snapshot.SpecFormat,
		Content:     snapshot.SpecContent,
	})
	if err != nil {
		return nil, err
	}
	if result.Spec == nil {
		return nil, pipeline.NewError(project.PhaseSpecAnalysis, pipeline.KindExecutionFailure, errors.New("analyzer returned no structured spec"))
	}

	needsClarification := false
	for _, q := range result.Questions {
		if q.Required && !q.Answered {
			needsClarification = true
			break
		}
	}

	metadata := map[string]any{
		"features_count": len(result.Spec.Features),
		"models_count":   len(result.Spec.DataModels),
	}
	if needsClarification {
		metadata["needs_clarification"] = true
	}

	message := fmt.Sprintf("Identified %d features, %d data models and %d endpoints",
		len(result.Spec.Features), len(result.Spec.DataModels), len(result.Spec.APIEndpoints))
	if needsClarification {
		message += "; clarification needed before generation"
	}

	return &PhaseResult{
		Apply: func(p *project.Project) error {
			p.Spec = result.Spec
			if needsClarification {
				p.Clarifications = result.Questions
			}
			return nil
		},
		Metadata: metadata,
		Events:   []events.Event{events.AgentMessage(snapshot.ID, "spec", message)},
	}, nil
}

func (o *Orchestrator) generationWork(ctx context.Context, snapshot *project.Project) (*PhaseResult, error) {
	if snapshot.Spec == nil {
		return nil, pipeline.NewError(project.PhaseCodeGeneration, pipeline.KindInvalidInput, errors.New("no structured spec to generate from"))
	}
	generated, err := o.generator.Generate(ctx, pipeline.GenerationRequest{
		ProjectID:   snapshot.ID,
		ProjectName: snapshot.Name,
		Spec:        snapshot.Spec,
		Options:     snapshot.Options,
	})
	if err != nil {
		return nil, err
	}

	var phaseEvents []events.Event
	for i, f := range generated.Files {
		if i == maxFileEvents {
			break
		}
		phaseEvents = append(phaseEvents, events.FileGenerated(snapshot.ID, f.Path, f.Lines))
	}
	phaseEvents = append(phaseEvents, events.AgentMessage(snapshot.ID, "coding",
		fmt.Sprintf("Generated %d files (%d lines)", generated.FileCount(), generated.TotalLines())))

	return &PhaseResult{
		Apply: func(p *project.Project) error {
			p.Generated = generated
			return nil
		},
		Metadata: map[string]any{
			"files_generated": generated.FileCount(),
			"total_lines":     generated.TotalLines(),
		},
		Events: phaseEvents,
	}, nil
}

func (o *Orchestrator) deploymentWork(ctx context.Context, snapshot *project.Project) (*PhaseResult, error) {
	if snapshot.Generated == nil {
		return nil, pipeline.NewError(project.PhaseDeployment, pipeline.KindInvalidInput, errors.New("no generated project to deploy"))
	}
	deployment, err := o.deployer.Deploy(ctx, pipeline.DeploymentRequest{
		ProjectName: snapshot.Name,
		Generated:   snapshot.Generated,
		Environment: "production",
	})
	if err != nil {
		return nil, err
	}
	if deployment.URL == "" {
		return nil, pipeline.NewError(project.PhaseDeployment, pipeline.KindExecutionFailure, fmt.Errorf("deployment %s returned no URL", deployment.DeploymentID))
	}

	return &PhaseResult{
		Apply: func(p *project.Project) error {
			p.Deployment = deployment
			return nil
		},
		Metadata: map[string]any{
			"url":           deployment.URL,
			"deployment_id": deployment.DeploymentID,
		},
		Events: []events.Event{events.AgentMessage(snapshot.ID, "devops", "Deployed to "+deployment.URL)},
	}, nil
}
