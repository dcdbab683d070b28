package project

import "context"

// ListFilter narrows and pages List results.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// Store is the canonical home of Project records. Update must be atomic with
// respect to concurrent updates on the same id; updates to different ids may
// proceed in parallel. Implementations return ErrNotFound for unknown ids.
type Store interface {
	// Create persists a new project. A zero id or status is assigned.
	Create(ctx context.Context, p *Project) (*Project, error)

	// Get returns a snapshot of the project.
	Get(ctx context.Context, id string) (*Project, error)

	// Update applies mutate to the current record and persists the result as
	// one atomic step. When mutate returns an error nothing is written and
	// the error is returned unchanged.
	Update(ctx context.Context, id string, mutate func(*Project) error) (*Project, error)

	// Delete removes the project.
	Delete(ctx context.Context, id string) error

	// List returns a page of snapshots, newest first, plus the total count
	// matching the filter.
	List(ctx context.Context, filter ListFilter) ([]*Project, int, error)
}
