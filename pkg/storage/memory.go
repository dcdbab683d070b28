// Package storage provides the in-memory reference implementation of the
// project store. A durable backend is a drop-in alternate implementation of
// project.Store.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

// MemoryStore keeps one mutable record per project id, guarded by a per-id
// mutex so concurrent updates to the same id serialize while different ids
// proceed in parallel. All reads and writes go through deep copies; callers
// never alias the stored record.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu  sync.Mutex
	rec *project.Project
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry)}
}

// Create persists a new project, assigning id and pending status when unset.
func (s *MemoryStore) Create(_ context.Context, p *project.Project) (*project.Project, error) {
	rec := p.Clone()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Status == "" {
		rec.Status = project.StatusPending
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[rec.ID] = &entry{rec: rec}
	return rec.Clone(), nil
}

// Get returns a snapshot of the project.
func (s *MemoryStore) Get(_ context.Context, id string) (*project.Project, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone(), nil
}

// Update applies mutate to a copy of the current record and persists the
// result atomically. When mutate fails nothing is written.
func (s *MemoryStore) Update(_ context.Context, id string, mutate func(*project.Project) error) (*project.Project, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.rec.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	e.rec = next
	return next.Clone(), nil
}

// Delete removes the project.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return project.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// List returns a page of snapshots, newest first, and the total matching
// the filter.
func (s *MemoryStore) List(_ context.Context, filter project.ListFilter) ([]*project.Project, int, error) {
	s.mu.RLock()
	all := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	s.mu.RUnlock()

	var matched []*project.Project
	for _, e := range all {
		e.mu.Lock()
		rec := e.rec.Clone()
		e.mu.Unlock()
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return nil, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *MemoryStore) entry(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, project.ErrNotFound
	}
	return e, nil
}
