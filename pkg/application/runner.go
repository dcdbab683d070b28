package application

import (
	"context"
	"time"

	"github.com/felixgeelhaar/specforge/pkg/domain/events"
	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

// PhaseWork is one call into an external collaborator. It receives a
// snapshot of the project taken before the call; the runner never holds the
// stored record across the invocation.
type PhaseWork func(ctx context.Context, snapshot *project.Project) (*PhaseResult, error)

// PhaseResult carries a successful phase outcome back into the store.
type PhaseResult struct {
	// Apply writes the phase's output payload onto the project record.
	Apply func(*project.Project) error

	// Metadata is recorded on the phase, e.g. file counts.
	Metadata map[string]any

	// Events are published after the completion write, before the
	// phase_completed event.
	Events []events.Event
}

// PhaseRunner executes a single named phase: status and phase transitions,
// timestamps, event publication and failure classification. It never
// retries; retry policy belongs to the decorated collaborators.
type PhaseRunner struct {
	store project.Store
	bus   *events.Bus
	now   func() time.Time
}

// NewPhaseRunner creates a runner over the given store and bus.
func NewPhaseRunner(store project.Store, bus *events.Bus) *PhaseRunner {
	return &PhaseRunner{
		store: store,
		bus:   bus,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Run drives one phase from pending to completed or failed.
//
// The project transitions to activeStatus via transitionEvent unless a
// previous step (e.g. the clarification resume) already moved it there.
// Cancellation is checked at every store write: a result computed after the
// project was cancelled is discarded, never written, and the runner returns
// project.ErrCancelled.
func (r *PhaseRunner) Run(ctx context.Context, projectID, phase string, activeStatus project.Status, transitionEvent string, work PhaseWork) error {
	snapshot, err := r.store.Update(ctx, projectID, func(p *project.Project) error {
		if p.Status == project.StatusCancelled {
			return project.ErrCancelled
		}
		if p.Status != activeStatus {
			if err := p.Transition(transitionEvent, r.now()); err != nil {
				return err
			}
		}
		return p.StartPhase(phase, r.now())
	})
	if err != nil {
		return err
	}
	r.bus.Publish(events.PhaseStarted(projectID, phase))

	result, workErr := work(ctx, snapshot)
	if workErr != nil {
		return r.fail(ctx, projectID, phase, workErr)
	}

	updated, err := r.store.Update(ctx, projectID, func(p *project.Project) error {
		if p.Status == project.StatusCancelled {
			return project.ErrCancelled
		}
		if result != nil && result.Apply != nil {
			if err := result.Apply(p); err != nil {
				return err
			}
		}
		var metadata map[string]any
		if result != nil {
			metadata = result.Metadata
		}
		return p.CompletePhase(phase, r.now(), metadata)
	})
	if err != nil {
		return err
	}

	if result != nil {
		for _, e := range result.Events {
			r.bus.Publish(e)
		}
	}
	info := updated.Phases[phase]
	r.bus.Publish(events.PhaseCompleted(projectID, phase, info.DurationMS))
	return nil
}

// fail classifies the collaborator error, records it on the project and
// publishes an error event. The write is skipped if the project was
// cancelled while the work was in flight.
func (r *PhaseRunner) fail(ctx context.Context, projectID, phase string, workErr error) error {
	cerr := pipeline.Classify(phase, workErr)
	_, err := r.store.Update(ctx, projectID, func(p *project.Project) error {
		if p.Status == project.StatusCancelled {
			return project.ErrCancelled
		}
		if err := p.FailPhase(phase, r.now(), cerr.Error()); err != nil {
			return err
		}
		return p.Transition(project.EventFail, r.now())
	})
	if err != nil {
		return err
	}
	r.bus.Publish(events.Error(projectID, phase, cerr.Error()))
	return cerr
}
