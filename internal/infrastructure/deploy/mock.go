package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

// MockDeployer fabricates deployment results without touching the network.
// Used when no Vercel token is configured.
type MockDeployer struct {
	// Delay simulates deployment latency.
	Delay time.Duration
}

// NewMockDeployer creates a mock deployer with no artificial delay.
func NewMockDeployer() *MockDeployer {
	return &MockDeployer{}
}

// Deploy returns a plausible deployment result for the project.
func (d *MockDeployer) Deploy(ctx context.Context, req pipeline.DeploymentRequest) (*project.DeploymentResult, error) {
	if req.Generated == nil {
		return nil, pipeline.NewError(project.PhaseDeployment, pipeline.KindInvalidInput,
			fmt.Errorf("deployment requires a generated project"))
	}

	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	name := slugify(req.ProjectName)
	id := name + "-" + suffix
	return &project.DeploymentResult{
		URL:          fmt.Sprintf("https://%s.vercel.app", id),
		DeploymentID: id,
		BuildLogsURL: fmt.Sprintf("https://vercel.com/deployments/%s", id),
		DurationMS:   d.Delay.Milliseconds(),
	}, nil
}

func slugify(name string) string {
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
