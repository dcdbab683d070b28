package application

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

// mockAnalyzer implements pipeline.Analyzer with a configurable function.
type mockAnalyzer struct {
	mu      sync.Mutex
	calls   int
	analyze func(ctx context.Context, req pipeline.AnalysisRequest) (*pipeline.AnalysisResult, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req pipeline.AnalysisRequest) (*pipeline.AnalysisResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.analyze != nil {
		return m.analyze(ctx, req)
	}
	return &pipeline.AnalysisResult{Spec: minimalSpec(req.ProjectName)}, nil
}

func (m *mockAnalyzer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockGenerator implements pipeline.Generator with a configurable function.
type mockGenerator struct {
	mu       sync.Mutex
	calls    int
	generate func(ctx context.Context, req pipeline.GenerationRequest) (*project.GeneratedProject, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req pipeline.GenerationRequest) (*project.GeneratedProject, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.generate != nil {
		return m.generate(ctx, req)
	}
	return minimalGenerated(), nil
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockDeployer implements pipeline.Deployer with a configurable function.
type mockDeployer struct {
	mu     sync.Mutex
	calls  int
	deploy func(ctx context.Context, req pipeline.DeploymentRequest) (*project.DeploymentResult, error)
}

func (m *mockDeployer) Deploy(ctx context.Context, req pipeline.DeploymentRequest) (*project.DeploymentResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.deploy != nil {
		return m.deploy(ctx, req)
	}
	return &project.DeploymentResult{
		URL:          "https://" + req.ProjectName + "-12345678.vercel.app",
		DeploymentID: req.ProjectName + "-12345678",
	}, nil
}

func (m *mockDeployer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func minimalSpec(name string) *spec.StructuredSpec {
	return &spec.StructuredSpec{
		ProjectName: name,
		Description: name + " application",
		Features:    []spec.Feature{{ID: "f_1", Name: "Core", Priority: spec.PriorityMust}},
		Complexity:  spec.ComplexitySimple,
	}
}

func minimalGenerated() *project.GeneratedProject {
	return &project.GeneratedProject{
		Files: []project.GeneratedFile{
			{Path: "package.json", FileType: "config", Lines: 12},
			{Path: "src/app/page.tsx", FileType: "source", Lines: 30},
		},
		EntryPoint:   "src/app/page.tsx",
		BuildCommand: "npm run build",
		StartCommand: "npm run dev",
	}
}
