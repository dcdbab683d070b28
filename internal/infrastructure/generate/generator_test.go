package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

func sampleRequest() pipeline.GenerationRequest {
	return pipeline.GenerationRequest{
		ProjectID:   "p1",
		ProjectName: "Task Tracker",
		Options:     project.DefaultOptions(),
		Spec: &spec.StructuredSpec{
			ProjectName: "Task Tracker",
			Description: "A lightweight task tracker",
			Features: []spec.Feature{
				{ID: "f_1", Name: "Task creation", Description: "Create tasks", Priority: spec.PriorityMust},
			},
			DataModels: []spec.DataModel{
				{Name: "Task", Fields: []spec.ModelField{
					{Name: "title", Type: "string", Required: true},
					{Name: "done", Type: "boolean"},
					{Name: "due_date", Type: "date"},
				}},
			},
			APIEndpoints: []spec.APIEndpoint{
				{Method: "GET", Path: "/tasks", Description: "List tasks"},
				{Method: "POST", Path: "/tasks", Description: "Create task"},
				{Method: "DELETE", Path: "/tasks/{id}", Description: "Delete task"},
			},
			UIComponents: []spec.UIComponent{
				{Name: "Task List", Type: spec.ComponentPage, Route: "/tasks", Description: "Main list"},
				{Name: "Task Form", Type: spec.ComponentForm, Description: "Create form"},
			},
			Complexity: spec.ComplexitySimple,
		},
	}
}

func fileByPath(t *testing.T, g *project.GeneratedProject, path string) project.GeneratedFile {
	t.Helper()
	for _, f := range g.Files {
		if f.Path == path {
			return f
		}
	}
	t.Fatalf("file %s not generated; have %v", path, paths(g))
	return project.GeneratedFile{}
}

func paths(g *project.GeneratedProject) []string {
	out := make([]string, 0, len(g.Files))
	for _, f := range g.Files {
		out = append(out, f.Path)
	}
	return out
}

func TestGenerateScaffold(t *testing.T) {
	g := New("")
	generated, err := g.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if generated.EntryPoint != "src/app/page.tsx" {
		t.Errorf("EntryPoint = %q", generated.EntryPoint)
	}
	if generated.BuildCommand != "npm run build" || generated.StartCommand != "npm run dev" {
		t.Errorf("commands = %q / %q", generated.BuildCommand, generated.StartCommand)
	}
	if generated.OutputDirectory != "" {
		t.Errorf("OutputDirectory = %q, want empty without output root", generated.OutputDirectory)
	}
	if _, ok := generated.Dependencies["next"]; !ok {
		t.Error("dependencies missing next")
	}

	pkg := fileByPath(t, generated, "package.json")
	if pkg.FileType != "config" {
		t.Errorf("package.json file type = %q", pkg.FileType)
	}
	if !strings.Contains(pkg.Content, `"name": "task-tracker"`) {
		t.Errorf("package.json missing sanitized name:\n%s", pkg.Content)
	}

	fileByPath(t, generated, "tsconfig.json")
	fileByPath(t, generated, "tailwind.config.js")
	fileByPath(t, generated, "src/app/layout.tsx")

	if generated.FileCount() != len(generated.Files) {
		t.Errorf("FileCount() = %d", generated.FileCount())
	}
	if generated.TotalLines() <= 0 {
		t.Error("TotalLines() should be positive")
	}
}

func TestGenerateTypesFromDataModels(t *testing.T) {
	g := New("")
	generated, err := g.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	types := fileByPath(t, generated, "src/lib/types.ts")
	for _, want := range []string{
		"export interface Task {",
		"title: string;",
		"done?: boolean;",
		"dueDate?: string;",
	} {
		if !strings.Contains(types.Content, want) {
			t.Errorf("types.ts missing %q:\n%s", want, types.Content)
		}
	}
}

func TestGenerateAPIRoutes(t *testing.T) {
	g := New("")
	generated, err := g.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tasks := fileByPath(t, generated, "src/app/api/tasks/route.ts")
	if !strings.Contains(tasks.Content, "export async function GET()") ||
		!strings.Contains(tasks.Content, "export async function POST()") {
		t.Errorf("tasks route missing handlers:\n%s", tasks.Content)
	}

	// Path parameters become app-router dynamic segments.
	fileByPath(t, generated, "src/app/api/tasks/[id]/route.ts")
}

func TestGeneratePageRoutes(t *testing.T) {
	g := New("")
	generated, err := g.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	page := fileByPath(t, generated, "src/app/tasks/page.tsx")
	if !strings.Contains(page.Content, "export default function TaskList()") {
		t.Errorf("tasks page content:\n%s", page.Content)
	}
	fileByPath(t, generated, "src/components/TaskForm.tsx")
}

func TestGenerateJavaScriptVariant(t *testing.T) {
	req := sampleRequest()
	req.Options.TypeScript = false
	req.Options.IncludeTests = false

	g := New("")
	generated, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if generated.EntryPoint != "src/app/page.jsx" {
		t.Errorf("EntryPoint = %q", generated.EntryPoint)
	}
	for _, f := range generated.Files {
		if f.Path == "tsconfig.json" || f.Path == "src/lib/types.ts" {
			t.Errorf("unexpected TypeScript file %s", f.Path)
		}
		if strings.HasSuffix(f.Path, ".test.jsx") {
			t.Errorf("unexpected test file %s", f.Path)
		}
	}
	fileByPath(t, generated, "src/app/api/tasks/route.js")
}

func TestGenerateWritesToDisk(t *testing.T) {
	root := t.TempDir()
	g := New(root)
	generated, err := g.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	wantDir := filepath.Join(root, "task-tracker")
	if generated.OutputDirectory != wantDir {
		t.Fatalf("OutputDirectory = %q, want %q", generated.OutputDirectory, wantDir)
	}
	raw, err := os.ReadFile(filepath.Join(wantDir, "package.json"))
	if err != nil {
		t.Fatalf("read package.json: %v", err)
	}
	if !strings.Contains(string(raw), "task-tracker") {
		t.Errorf("package.json on disk:\n%s", raw)
	}
	if _, err := os.Stat(filepath.Join(wantDir, "src", "app", "page.tsx")); err != nil {
		t.Errorf("entry point not written: %v", err)
	}
}

func TestGenerateRequiresSpec(t *testing.T) {
	g := New("")
	_, err := g.Generate(context.Background(), pipeline.GenerationRequest{ProjectName: "x"})
	var collabErr *pipeline.CollaboratorError
	if !errors.As(err, &collabErr) || collabErr.Kind != pipeline.KindInvalidInput {
		t.Fatalf("Generate() error = %v, want invalid_input", err)
	}
}

func TestGenerateRejectsUnknownFramework(t *testing.T) {
	req := sampleRequest()
	req.Options.Framework = "sveltekit"
	g := New("")
	_, err := g.Generate(context.Background(), req)
	var collabErr *pipeline.CollaboratorError
	if !errors.As(err, &collabErr) || collabErr.Kind != pipeline.KindInvalidInput {
		t.Fatalf("Generate() error = %v, want invalid_input", err)
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := New(t.TempDir())
	if _, err := g.Generate(ctx, sampleRequest()); err == nil {
		t.Fatal("Generate() with cancelled context expected error")
	}
}
