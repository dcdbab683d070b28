// Package generate implements the code-generation collaborator. It
// synthesizes a runnable Next.js application from a structured spec and
// optionally materializes the files under an output directory.
package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

// Generator implements pipeline.Generator for the Next.js stack.
type Generator struct {
	// outputRoot is where generated projects are written; empty keeps the
	// result in memory only.
	outputRoot string
}

// New creates a generator writing under outputRoot. Pass "" to skip writing
// files to disk.
func New(outputRoot string) *Generator {
	return &Generator{outputRoot: outputRoot}
}

// Generate synthesizes the application file set and writes it to disk when an
// output root is configured.
func (g *Generator) Generate(ctx context.Context, req pipeline.GenerationRequest) (*project.GeneratedProject, error) {
	if req.Spec == nil {
		return nil, pipeline.NewError(project.PhaseCodeGeneration, pipeline.KindInvalidInput,
			fmt.Errorf("generation requires a structured spec"))
	}
	if fw := req.Options.Framework; fw != "" && fw != "nextjs" {
		return nil, pipeline.NewError(project.PhaseCodeGeneration, pipeline.KindInvalidInput,
			fmt.Errorf("unsupported framework %q", fw))
	}

	scaffold := newScaffold(req)
	files := scaffold.files()

	generated := &project.GeneratedProject{
		Files:           files,
		EntryPoint:      scaffold.entryPoint(),
		BuildCommand:    "npm run build",
		StartCommand:    "npm run dev",
		Dependencies:    scaffold.dependencies(),
		DevDependencies: scaffold.devDependencies(),
	}

	if g.outputRoot != "" {
		dir := filepath.Join(g.outputRoot, sanitizeName(req.ProjectName))
		if err := writeFiles(ctx, dir, files); err != nil {
			return nil, pipeline.NewError(project.PhaseCodeGeneration, pipeline.KindExecutionFailure, err)
		}
		generated.OutputDirectory = dir
	}

	return generated, nil
}

func writeFiles(ctx context.Context, dir string, files []project.GeneratedFile) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	return nil
}

// sanitizeName turns a project name into a directory-safe slug.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "app"
	}
	return b.String()
}
