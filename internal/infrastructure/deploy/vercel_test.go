package deploy

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

func deployRequest() pipeline.DeploymentRequest {
	return pipeline.DeploymentRequest{
		ProjectName: "Task Tracker",
		Environment: "production",
		Generated:   &project.GeneratedProject{OutputDirectory: "/tmp/task-tracker"},
	}
}

func stubCommand(output string, err error) func(context.Context, string, ...string) (string, error) {
	return func(context.Context, string, ...string) (string, error) {
		return output, err
	}
}

func TestVercelDeploySuccess(t *testing.T) {
	d := NewVercelDeployer("tok", "")
	d.runCommand = stubCommand("Deploying...\nhttps://task-tracker-abc123.vercel.app\n", nil)

	result, err := d.Deploy(context.Background(), deployRequest())
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	if result.URL != "https://task-tracker-abc123.vercel.app" {
		t.Errorf("URL = %q", result.URL)
	}
	if result.DeploymentID != "task-tracker-abc123" {
		t.Errorf("DeploymentID = %q", result.DeploymentID)
	}
	if result.BuildLogsURL == "" {
		t.Error("BuildLogsURL empty")
	}
}

func TestVercelDeployPassesFlags(t *testing.T) {
	var gotDir string
	var gotArgs []string
	d := NewVercelDeployer("tok", "acme")
	d.runCommand = func(_ context.Context, dir string, args ...string) (string, error) {
		gotDir = dir
		gotArgs = args
		return "https://x-1.vercel.app", nil
	}

	if _, err := d.Deploy(context.Background(), deployRequest()); err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	if gotDir != "/tmp/task-tracker" {
		t.Errorf("dir = %q", gotDir)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"deploy", "--token tok", "--prod", "--scope acme"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestVercelDeployNoURLInOutput(t *testing.T) {
	d := NewVercelDeployer("tok", "")
	d.runCommand = stubCommand("Deploying...\ndone\n", nil)

	_, err := d.Deploy(context.Background(), deployRequest())
	var collabErr *pipeline.CollaboratorError
	if !errors.As(err, &collabErr) || collabErr.Kind != pipeline.KindExecutionFailure {
		t.Fatalf("Deploy() error = %v, want execution_failure", err)
	}
}

func TestVercelDeployErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
		want   pipeline.ErrorKind
	}{
		{"bad token", "Error: invalid token provided", fmt.Errorf("exit status 1"), pipeline.KindInvalidInput},
		{"rate limited", "Error: rate limit exceeded", fmt.Errorf("exit status 1"), pipeline.KindUnavailable},
		{"cli missing", "", exec.ErrNotFound, pipeline.KindUnavailable},
		{"build failure", "Error: build failed", fmt.Errorf("exit status 1"), pipeline.KindExecutionFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewVercelDeployer("tok", "")
			d.runCommand = stubCommand(tt.output, tt.err)

			_, err := d.Deploy(context.Background(), deployRequest())
			var collabErr *pipeline.CollaboratorError
			if !errors.As(err, &collabErr) {
				t.Fatalf("Deploy() error = %v, want CollaboratorError", err)
			}
			if collabErr.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", collabErr.Kind, tt.want)
			}
		})
	}
}

func TestVercelDeployTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewVercelDeployer("tok", "")
	d.runCommand = stubCommand("", fmt.Errorf("signal: killed"))

	_, err := d.Deploy(ctx, deployRequest())
	var collabErr *pipeline.CollaboratorError
	if !errors.As(err, &collabErr) || collabErr.Kind != pipeline.KindTimeout {
		t.Fatalf("Deploy() error = %v, want timeout", err)
	}
}

func TestVercelDeployRequiresOutputDirectory(t *testing.T) {
	d := NewVercelDeployer("tok", "")
	req := deployRequest()
	req.Generated = &project.GeneratedProject{}

	_, err := d.Deploy(context.Background(), req)
	var collabErr *pipeline.CollaboratorError
	if !errors.As(err, &collabErr) || collabErr.Kind != pipeline.KindInvalidInput {
		t.Fatalf("Deploy() error = %v, want invalid_input", err)
	}
}

func TestMockDeploy(t *testing.T) {
	d := NewMockDeployer()
	result, err := d.Deploy(context.Background(), deployRequest())
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}

	urlRe := regexp.MustCompile(`^https://task-tracker-[0-9a-f]{8}\.vercel\.app$`)
	if !urlRe.MatchString(result.URL) {
		t.Errorf("URL = %q", result.URL)
	}
	if !strings.HasPrefix(result.BuildLogsURL, "https://vercel.com/deployments/") {
		t.Errorf("BuildLogsURL = %q", result.BuildLogsURL)
	}
	if result.DeploymentID == "" {
		t.Error("DeploymentID empty")
	}
}

func TestMockDeployHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &MockDeployer{Delay: time.Minute}
	if _, err := d.Deploy(ctx, deployRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Deploy() error = %v, want context.Canceled", err)
	}
}

func TestMockDeployRequiresGenerated(t *testing.T) {
	d := NewMockDeployer()
	_, err := d.Deploy(context.Background(), pipeline.DeploymentRequest{ProjectName: "x"})
	var collabErr *pipeline.CollaboratorError
	if !errors.As(err, &collabErr) || collabErr.Kind != pipeline.KindInvalidInput {
		t.Fatalf("Deploy() error = %v, want invalid_input", err)
	}
}
