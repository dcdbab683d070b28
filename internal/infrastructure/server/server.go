// Package server exposes the pipeline over HTTP: a JSON API for project
// lifecycle operations plus SSE and WebSocket event streams.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/felixgeelhaar/specforge/pkg/application"
	"github.com/felixgeelhaar/specforge/pkg/domain/events"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
)

// Config wires the HTTP surface to the application layer.
type Config struct {
	Service      *application.ProjectService
	Orchestrator *application.Orchestrator
	Bus          *events.Bus
	Logger       *slog.Logger
	BasePath     string
}

type apiErrorBody struct {
	Code    string `json:"code" example:"not_found"`
	Message string `json:"message" example:"project not found"`
}

// apiError is the error envelope for every non-2xx response.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

func newAPIError(status int, code, message string) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{status: status, Body: apiErrorBody{Code: code, Message: message}}
}

// New returns the HTTP handler for the pipeline API.
func New(cfg Config) http.Handler {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		return newAPIError(status, "", msg)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	api := humachi.New(router, huma.DefaultConfig("SpecForge API", "1.0.0"))
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerProjects(group, cfg, logger)
	registerClarifications(group, cfg)

	streams := newStreamHandler(cfg.Service, cfg.Bus, logger)
	router.Get(basePath+"/projects/{id}/stream", streams.serveSSE)
	router.Get(basePath+"/projects/{id}/ws", streams.serveWS)

	return router
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Status string `json:"status" example:"ok"`
		} `json:"body"`
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status" example:"ok"`
			} `json:"body"`
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})
}

func registerProjects(api huma.API, cfg Config, logger *slog.Logger) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/projects",
		Summary:       "Create a project and start its pipeline",
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body CreateProjectRequest `json:"body"`
	}) (*struct {
		Body ProjectResponse `json:"body"`
	}, error) {
		created, err := cfg.Service.Create(ctx, application.CreateRequest{
			Name:        input.Body.Name,
			SpecFormat:  input.Body.SpecFormat,
			SpecContent: input.Body.SpecContent,
			Options:     input.Body.Options,
		})
		if err != nil {
			return nil, handleError(err)
		}

		// The pipeline outlives the request.
		go func(id string) {
			if _, err := cfg.Orchestrator.Run(context.Background(), id); err != nil {
				logger.Error("pipeline run failed", "project_id", id, "error", err)
			}
		}(created.ID)

		return &struct {
			Body ProjectResponse `json:"body"`
		}{Body: projectResponse(created)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Status string `query:"status" doc:"Filter by status"`
		Limit  int    `query:"limit" doc:"Page size; 0 returns everything"`
		Offset int    `query:"offset" doc:"Page offset"`
	}) (*struct {
		Body ProjectListResponse `json:"body"`
	}, error) {
		items, total, err := cfg.Service.List(ctx, input.Status, input.Limit, input.Offset)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ProjectListResponse `json:"body"`
		}{Body: ProjectListResponse{
			Projects: mapProjects(items),
			Total:    total,
			Limit:    input.Limit,
			Offset:   input.Offset,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{id}",
		Summary:     "Get a project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body ProjectResponse `json:"body"`
	}, error) {
		p, err := cfg.Service.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ProjectResponse `json:"body"`
		}{Body: projectResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-project",
		Method:        http.MethodDelete,
		Path:          "/projects/{id}",
		Summary:       "Delete a project, cancelling it first when active",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		err := cfg.Service.Delete(ctx, input.ID)
		if errors.Is(err, application.ErrProjectActive) {
			if _, err := cfg.Orchestrator.Cancel(ctx, input.ID); err != nil && !errors.Is(err, project.ErrTerminal) {
				return nil, handleError(err)
			}
			err = cfg.Service.Delete(ctx, input.ID)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-project",
		Method:      http.MethodPost,
		Path:        "/projects/{id}/cancel",
		Summary:     "Cancel a running pipeline",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body ProjectResponse `json:"body"`
	}, error) {
		p, err := cfg.Orchestrator.Cancel(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ProjectResponse `json:"body"`
		}{Body: projectResponse(p)}, nil
	})
}

func registerClarifications(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-clarifications",
		Method:      http.MethodGet,
		Path:        "/projects/{id}/clarifications",
		Summary:     "List pending clarification questions",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body ClarificationListResponse `json:"body"`
	}, error) {
		questions, err := cfg.Orchestrator.Clarifications(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ClarificationListResponse `json:"body"`
		}{Body: ClarificationListResponse{ProjectID: input.ID, Questions: questions}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "submit-clarifications",
		Method:      http.MethodPost,
		Path:        "/projects/{id}/clarify",
		Summary:     "Answer clarification questions; the pipeline resumes when all required questions are answered",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string         `path:"id"`
		Body ClarifyRequest `json:"body"`
	}) (*struct {
		Body ProjectResponse `json:"body"`
	}, error) {
		p, err := cfg.Orchestrator.SubmitClarifications(ctx, input.ID, input.Body.Answers)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ProjectResponse `json:"body"`
		}{Body: projectResponse(p)}, nil
	})
}

// handleError maps domain errors onto HTTP status codes.
func handleError(err error) huma.StatusError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, project.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, project.ErrTerminal):
		return newAPIError(http.StatusConflict, "terminal", err.Error())
	case errors.Is(err, application.ErrProjectActive):
		return newAPIError(http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, project.ErrNotClarifying),
		errors.Is(err, project.ErrUnknownQuestion),
		errors.Is(err, project.ErrAnswerRequired),
		errors.Is(err, application.ErrInvalidName),
		errors.Is(err, application.ErrInvalidFormat),
		errors.Is(err, application.ErrSpecTooShort),
		errors.Is(err, application.ErrInvalidStatus):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}
