package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/trackly/internal/activity"
	"github.com/gosuda/trackly/internal/domain"
	"github.com/gosuda/trackly/internal/server/middleware"
)

const dayLayout = "2006-01-02"

type ListActivityInput struct {
	ProjectID  string `query:"project_id" doc:"Restrict to one project; omit for the whole workspace"`
	EntityType string `query:"entity_type" doc:"Exact entity type, e.g. task"`
	ActorID    string `query:"actor_id" doc:"Exact actor id"`
	Action     string `query:"action" doc:"Exact action, e.g. status_changed"`
	DateFrom   string `query:"date_from" doc:"Inclusive first day, YYYY-MM-DD (UTC)"`
	DateTo     string `query:"date_to" doc:"Inclusive last day, YYYY-MM-DD (UTC)"`
	Page       int    `query:"page" default:"1" doc:"1-based page; out of range values are clamped"`
}

// ActivityPage is one page of the activity log with the data needed to
// render its filter controls.
type ActivityPage struct {
	Items      []activity.Item `json:"items"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	NoResults  bool            `json:"no_results"`
	Filter     activity.Filter `json:"filter"`
	Facets     activity.Facets `json:"facets"`
	Project    *domain.Project `json:"project,omitempty"`
}

type ListActivityOutput struct {
	Body *ActivityPage
}

type GetActivityInput struct {
	ID uuid.UUID `path:"id" doc:"Activity entry ID"`
}

type GetActivityOutput struct {
	Body *activity.Item
}

type CreateActivityInput struct {
	Body struct {
		EntityType string          `json:"entity_type" minLength:"1" maxLength:"64" doc:"Category of the affected object"`
		EntityID   string          `json:"entity_id" minLength:"1" maxLength:"255" doc:"ID of the affected object"`
		EntityName string          `json:"entity_name,omitempty" maxLength:"255" doc:"Display name at time of action"`
		ActorID    string          `json:"actor_id,omitempty" doc:"Defaults to the caller"`
		ActorName  string          `json:"actor_name,omitempty" doc:"Defaults to the caller's token name"`
		Action     string          `json:"action" minLength:"1" maxLength:"64" doc:"Action verb; unknown values get a generic label"`
		ProjectID  *uuid.UUID      `json:"project_id,omitempty" doc:"Owning project"`
		Changes    []domain.Change `json:"changes,omitempty" doc:"Field-level before/after pairs"`
		Before     map[string]any  `json:"before,omitempty" doc:"Entity fields before the action; diffed against after when changes is omitted"`
		After      map[string]any  `json:"after,omitempty" doc:"Entity fields after the action"`
		Metadata   map[string]any  `json:"metadata,omitempty" doc:"Free-form context"`
	}
}

type CreateActivityOutput struct {
	Body *activity.Item
}

// RegisterActivityRoutes mounts the read side (list, get) and the single
// append endpoint. Entries are immutable, so there is no update or delete.
func RegisterActivityRoutes(api huma.API, store DataStore, loader activity.SnapshotSource, recorder ActivityRecorder) {
	huma.Register(api, huma.Operation{
		OperationID: "list-activity",
		Method:      http.MethodGet,
		Path:        "/activity",
		Summary:     "List activity, newest first, 50 per page",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *ListActivityInput) (*ListActivityOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		var scope activity.Scope
		if input.ProjectID != "" {
			pid, err := uuid.Parse(input.ProjectID)
			if err != nil {
				return nil, huma.Error400BadRequest("project_id must be a UUID")
			}
			scope.ProjectID = &pid
		}

		for _, day := range []string{input.DateFrom, input.DateTo} {
			if day == "" {
				continue
			}
			if _, err := time.Parse(dayLayout, day); err != nil {
				return nil, huma.Error400BadRequest("date_from and date_to must be YYYY-MM-DD")
			}
		}

		view := activity.NewView(loader, workspaceID, scope)
		defer view.Close()

		view.SetFilter(activity.Filter{
			EntityType: input.EntityType,
			ActorID:    input.ActorID,
			Action:     input.Action,
			DateFrom:   input.DateFrom,
			DateTo:     input.DateTo,
		})

		if err := view.Load(ctx); err != nil {
			if scope.ProjectID != nil && errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to load activity", err)
		}

		view.SetPage(input.Page)
		frame := view.Render()

		return &ListActivityOutput{Body: &ActivityPage{
			Items:      frame.Items,
			Total:      frame.Result.Total,
			TotalPages: frame.Result.TotalPages,
			Page:       frame.Result.Page,
			PageSize:   frame.Result.PageSize,
			NoResults:  frame.Result.NoResults,
			Filter:     frame.Filter,
			Facets:     frame.Facets,
			Project:    frame.Project,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-activity",
		Method:      http.MethodGet,
		Path:        "/activity/{id}",
		Summary:     "Get one activity entry with its label and diff",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *GetActivityInput) (*GetActivityOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		entry, err := store.Activity().GetByID(ctx, workspaceID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("activity entry not found")
			}
			return nil, huma.Error500InternalServerError("failed to get activity entry", err)
		}

		return &GetActivityOutput{Body: presentOne(entry)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-activity",
		Method:      http.MethodPost,
		Path:        "/activity",
		Summary:     "Append an activity entry",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *CreateActivityInput) (*CreateActivityOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		if input.Body.ProjectID != nil {
			if _, err := store.Projects().GetByID(ctx, workspaceID, *input.Body.ProjectID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error400BadRequest("project_id does not exist")
				}
				return nil, huma.Error500InternalServerError("failed to check project", err)
			}
		}

		changes := input.Body.Changes
		if input.Body.Before != nil || input.Body.After != nil {
			if len(changes) > 0 {
				return nil, huma.Error400BadRequest("send either changes or before/after, not both")
			}
			changes = activity.ChangesBetween(input.Body.Before, input.Body.After)
		}

		entry := &domain.LogEntry{
			WorkspaceID: workspaceID,
			EntityType:  input.Body.EntityType,
			EntityID:    input.Body.EntityID,
			EntityName:  input.Body.EntityName,
			ActorID:     input.Body.ActorID,
			ActorName:   input.Body.ActorName,
			Action:      domain.Action(input.Body.Action),
			ProjectID:   input.Body.ProjectID,
			Changes:     changes,
			Metadata:    input.Body.Metadata,
		}
		fillActor(ctx, entry)

		if err := recorder.Record(ctx, entry); err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidInput):
				return nil, huma.Error400BadRequest(err.Error())
			case errors.Is(err, domain.ErrConflict):
				return nil, huma.Error409Conflict("activity entry already exists")
			default:
				return nil, huma.Error500InternalServerError("failed to record activity", err)
			}
		}

		return &CreateActivityOutput{Body: presentOne(entry)}, nil
	})
}

// fillActor defaults the actor to the authenticated caller. The caller's
// name is only used when the entry is attributed to the caller.
func fillActor(ctx context.Context, entry *domain.LogEntry) {
	callerID, _ := middleware.UserIDFromContext(ctx)
	if entry.ActorID == "" {
		entry.ActorID = callerID
	}
	if entry.ActorName == "" && entry.ActorID == callerID {
		entry.ActorName, _ = middleware.UserNameFromContext(ctx)
	}
}

func presentOne(entry *domain.LogEntry) *activity.Item {
	return &activity.Item{
		Entry: entry,
		Label: activity.Describe(entry),
		Diff:  activity.RenderChanges(entry.Changes),
	}
}
