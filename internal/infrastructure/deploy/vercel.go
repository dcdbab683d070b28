// Package deploy implements the deployment collaborator. VercelDeployer
// shells out to the Vercel CLI; MockDeployer fabricates a deployment for
// local development and tests.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

var deployURLRe = regexp.MustCompile(`https://[a-zA-Z0-9-]+\.vercel\.app`)

// VercelDeployer deploys a generated project with the Vercel CLI.
type VercelDeployer struct {
	token string
	team  string
	// runCommand is swapped in tests.
	runCommand func(ctx context.Context, dir string, args ...string) (string, error)
}

// NewVercelDeployer creates a CLI-backed deployer. The token is passed to
// every invocation; team is optional.
func NewVercelDeployer(token, team string) *VercelDeployer {
	return &VercelDeployer{token: token, team: team, runCommand: runVercel}
}

// Deploy runs "vercel deploy" in the generated project directory and
// extracts the deployment URL from the CLI output.
func (d *VercelDeployer) Deploy(ctx context.Context, req pipeline.DeploymentRequest) (*project.DeploymentResult, error) {
	if req.Generated == nil || req.Generated.OutputDirectory == "" {
		return nil, pipeline.NewError(project.PhaseDeployment, pipeline.KindInvalidInput,
			fmt.Errorf("deployment requires a generated project on disk"))
	}
	if d.token == "" {
		return nil, pipeline.NewError(project.PhaseDeployment, pipeline.KindInvalidInput,
			fmt.Errorf("vercel token is not configured"))
	}

	args := []string{"deploy", "--yes", "--token", d.token}
	if req.Environment == "production" {
		args = append(args, "--prod")
	}
	if d.team != "" {
		args = append(args, "--scope", d.team)
	}

	start := time.Now()
	output, err := d.runCommand(ctx, req.Generated.OutputDirectory, args...)
	if err != nil {
		return nil, classifyCLIError(ctx, output, err)
	}

	url := deployURLRe.FindString(output)
	if url == "" {
		return nil, pipeline.NewError(project.PhaseDeployment, pipeline.KindExecutionFailure,
			fmt.Errorf("no deployment URL in vercel output"))
	}

	return &project.DeploymentResult{
		URL:          url,
		DeploymentID: deploymentID(url),
		BuildLogsURL: url + "/_logs",
		DurationMS:   time.Since(start).Milliseconds(),
	}, nil
}

func runVercel(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "vercel", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

// classifyCLIError maps CLI failures onto collaborator error kinds so the
// pipeline can decide what to retry.
func classifyCLIError(ctx context.Context, output string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return pipeline.NewError(project.PhaseDeployment, pipeline.KindTimeout,
			fmt.Errorf("vercel deploy timed out: %w", err))
	}
	if errors.Is(err, exec.ErrNotFound) {
		return pipeline.NewError(project.PhaseDeployment, pipeline.KindUnavailable,
			fmt.Errorf("vercel CLI not installed: %w", err))
	}

	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "invalid token") || strings.Contains(lower, "not authorized"):
		return pipeline.NewError(project.PhaseDeployment, pipeline.KindInvalidInput,
			fmt.Errorf("vercel rejected credentials: %w", err))
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "econnrefused") ||
		strings.Contains(lower, "network"):
		return pipeline.NewError(project.PhaseDeployment, pipeline.KindUnavailable,
			fmt.Errorf("vercel unreachable: %w", err))
	default:
		return pipeline.NewError(project.PhaseDeployment, pipeline.KindExecutionFailure,
			fmt.Errorf("vercel deploy failed: %w", err))
	}
}

// deploymentID derives an identifier from the deployment hostname.
func deploymentID(url string) string {
	host := strings.TrimPrefix(url, "https://")
	return strings.TrimSuffix(host, ".vercel.app")
}
