package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/specforge/pkg/domain/project"
	"github.com/felixgeelhaar/specforge/pkg/storage"
)

func validRequest() CreateRequest {
	return CreateRequest{
		Name:        "task-tracker",
		SpecFormat:  "markdown",
		SpecContent: "# Task Tracker\n\nA task tracking app.",
	}
}

func TestServiceCreate(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewProjectService(store)

	p, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" {
		t.Error("no id assigned")
	}
	if p.Status != project.StatusPending {
		t.Errorf("status = %q, want pending", p.Status)
	}
	if !p.Options.AutoDeploy {
		t.Error("default options not applied")
	}

	stored, err := store.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Name != "task-tracker" {
		t.Errorf("stored name = %q", stored.Name)
	}
}

func TestServiceCreateCustomOptions(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewProjectService(store)

	req := validRequest()
	opts := project.DefaultOptions()
	opts.AutoDeploy = false
	opts.TypeScript = false
	req.Options = &opts

	p, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Options.AutoDeploy || p.Options.TypeScript {
		t.Errorf("options = %+v", p.Options)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateRequest)
		wantErr error
	}{
		{"empty name", func(r *CreateRequest) { r.Name = "" }, ErrInvalidName},
		{"uppercase name", func(r *CreateRequest) { r.Name = "TaskTracker" }, ErrInvalidName},
		{"spaces in name", func(r *CreateRequest) { r.Name = "task tracker" }, ErrInvalidName},
		{"name too long", func(r *CreateRequest) { r.Name = strings.Repeat("a", 101) }, ErrInvalidName},
		{"unknown format", func(r *CreateRequest) { r.SpecFormat = "yaml" }, ErrInvalidFormat},
		{"empty format", func(r *CreateRequest) { r.SpecFormat = "" }, ErrInvalidFormat},
		{"content too short", func(r *CreateRequest) { r.SpecContent = "short" }, ErrSpecTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			svc := NewProjectService(store)

			req := validRequest()
			tt.mutate(&req)
			if _, err := svc.Create(context.Background(), req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create = %v, want %v", err, tt.wantErr)
			}

			_, total, err := svc.List(context.Background(), "", 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if total != 0 {
				t.Errorf("invalid request persisted a project")
			}
		})
	}
}

func TestServiceNameBoundary(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewProjectService(store)

	req := validRequest()
	req.Name = strings.Repeat("a", 100)
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Errorf("100-char name rejected: %v", err)
	}
	req.Name = "a"
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Errorf("1-char name rejected: %v", err)
	}
}

func TestServiceListStatusFilter(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewProjectService(store)

	p1, _ := svc.Create(context.Background(), validRequest())
	if _, err := svc.Create(context.Background(), validRequest()); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update(context.Background(), p1.ID, func(p *project.Project) error {
		return p.Transition(project.EventAnalyze, p.UpdatedAt)
	}); err != nil {
		t.Fatal(err)
	}

	got, total, err := svc.List(context.Background(), "analyzing", 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != p1.ID {
		t.Errorf("filtered list = %d/%d", len(got), total)
	}

	if _, _, err := svc.List(context.Background(), "exploded", 0, 0); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("List bogus status = %v, want ErrInvalidStatus", err)
	}
}

func TestServiceDelete(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewProjectService(store)

	p, _ := svc.Create(context.Background(), validRequest())
	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete pending: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.ID); !errors.Is(err, project.ErrNotFound) {
		t.Errorf("Get after delete = %v", err)
	}

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, project.ErrNotFound) {
		t.Errorf("Delete missing = %v", err)
	}
}

func TestServiceDeleteActiveRejected(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewProjectService(store)

	p, _ := svc.Create(context.Background(), validRequest())
	if _, err := store.Update(context.Background(), p.ID, func(p *project.Project) error {
		return p.Transition(project.EventAnalyze, p.UpdatedAt)
	}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), p.ID); !errors.Is(err, ErrProjectActive) {
		t.Fatalf("Delete active = %v, want ErrProjectActive", err)
	}

	// Terminal projects delete normally.
	if _, err := store.Update(context.Background(), p.ID, func(p *project.Project) error {
		return p.Transition(project.EventCancel, p.UpdatedAt)
	}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Errorf("Delete cancelled: %v", err)
	}
}
