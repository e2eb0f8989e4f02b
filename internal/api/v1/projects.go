package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/trackly/internal/domain"
	"github.com/gosuda/trackly/internal/server/middleware"
)

type CreateProjectInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Project name"`
		Key         string `json:"key,omitempty" maxLength:"10" doc:"Short code; derived from the name when omitted"`
		Description string `json:"description,omitempty" maxLength:"2000" doc:"Project description"`
	}
}

type CreateProjectOutput struct {
	Body *domain.Project
}

type ListProjectsInput struct{}

type ListProjectsOutput struct {
	Body []*domain.Project
}

type GetProjectInput struct {
	ID uuid.UUID `path:"id" doc:"Project ID"`
}

type GetProjectOutput struct {
	Body *domain.Project
}

func RegisterProjectRoutes(api huma.API, store DataStore, recorder ActivityRecorder) {
	huma.Register(api, huma.Operation{
		OperationID: "create-project",
		Method:      http.MethodPost,
		Path:        "/projects",
		Summary:     "Create a new project",
		Tags:        []string{"Projects"},
		Middlewares: huma.Middlewares{requireAdmin(api)},
	}, func(ctx context.Context, input *CreateProjectInput) (*CreateProjectOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		p, err := domain.NewProject(workspaceID, input.Body.Name, input.Body.Key, input.Body.Description)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if createErr := store.Projects().Create(ctx, p); createErr != nil {
			if errors.Is(createErr, domain.ErrConflict) {
				return nil, huma.Error409Conflict("project already exists")
			}
			return nil, huma.Error500InternalServerError("failed to create project", createErr)
		}

		entry := &domain.LogEntry{
			WorkspaceID: workspaceID,
			EntityType:  domain.EntityProject,
			EntityID:    p.ID.String(),
			EntityName:  p.Name,
			Action:      domain.ActionCreated,
			ProjectID:   &p.ID,
			Metadata:    map[string]any{"key": p.Key},
		}
		fillActor(ctx, entry)

		// The project exists at this point; a lost audit entry is logged
		// rather than reported as a failed create.
		if recErr := recorder.Record(ctx, entry); recErr != nil {
			log.Error().Err(recErr).Str("project_id", p.ID.String()).Msg("projects: failed to record creation")
		}

		return &CreateProjectOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects in current workspace",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, _ *ListProjectsInput) (*ListProjectsOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		projects, err := store.Projects().List(ctx, workspaceID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list projects", err)
		}

		return &ListProjectsOutput{Body: projects}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{id}",
		Summary:     "Get a project by ID",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *GetProjectInput) (*GetProjectOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		p, err := store.Projects().GetByID(ctx, workspaceID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to get project", err)
		}

		return &GetProjectOutput{Body: p}, nil
	})
}

// requireAdmin restricts a single operation to workspace admins.
func requireAdmin(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(hctx huma.Context, next func(huma.Context)) {
		role, _ := middleware.RoleFromContext(hctx.Context())
		if role != middleware.RoleAdmin {
			_ = huma.WriteErr(api, hctx, http.StatusForbidden, "admin role required")
			return
		}
		next(hctx)
	}
}
