package application

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

// Request validation errors, reported synchronously to the caller and never
// written into a project record.
var (
	ErrInvalidName   = errors.New("name must be 1-100 lowercase letters, digits or hyphens")
	ErrInvalidFormat = errors.New("spec_format must be markdown or csv")
	ErrSpecTooShort  = errors.New("spec_content must be at least 10 characters")
	ErrInvalidStatus = errors.New("unknown status filter")
	ErrProjectActive = errors.New("project has an active pipeline run")
)

var namePattern = regexp.MustCompile(`^[a-z0-9-]{1,100}$`)

// CreateRequest carries the inputs for a new project.
type CreateRequest struct {
	Name        string
	SpecFormat  string
	SpecContent string
	Options     *project.Options
}

func (r CreateRequest) validate() error {
	if !namePattern.MatchString(r.Name) {
		return ErrInvalidName
	}
	if r.SpecFormat != "markdown" && r.SpecFormat != "csv" {
		return ErrInvalidFormat
	}
	if len(r.SpecContent) < 10 {
		return ErrSpecTooShort
	}
	return nil
}

// ProjectService exposes project CRUD over the store. Running, cancelling
// and clarifying are the Orchestrator's concern.
type ProjectService struct {
	store project.Store
	now   func() time.Time
}

// NewProjectService creates the service.
func NewProjectService(store project.Store) *ProjectService {
	return &ProjectService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the request and persists a pending project. It does not
// start the pipeline; the dispatch layer schedules that separately.
func (s *ProjectService) Create(ctx context.Context, req CreateRequest) (*project.Project, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	opts := project.DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}
	return s.store.Create(ctx, project.New(req.Name, req.SpecFormat, req.SpecContent, opts, s.now()))
}

// Get returns a project snapshot.
func (s *ProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	return s.store.Get(ctx, id)
}

// List returns a page of projects plus the total matching the filter.
// statusFilter is optional; limit and offset page the newest-first ordering.
func (s *ProjectService) List(ctx context.Context, statusFilter string, limit, offset int) ([]*project.Project, int, error) {
	filter := project.ListFilter{Limit: limit, Offset: offset}
	if statusFilter != "" {
		status, ok := project.ParseStatus(statusFilter)
		if !ok {
			return nil, 0, ErrInvalidStatus
		}
		filter.Status = &status
	}
	return s.store.List(ctx, filter)
}

// Delete removes a project that is not actively executing a phase. Active
// projects must be cancelled first.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.Status.IsActive() {
		return ErrProjectActive
	}
	return s.store.Delete(ctx, id)
}
