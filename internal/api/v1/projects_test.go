package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/trackly/internal/api/v1"
	"github.com/gosuda/trackly/internal/domain"
)

// ---------------------------------------------------------------------------
// POST /projects
// ---------------------------------------------------------------------------

func TestCreateProject(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_records_activity", func(t *testing.T) {
		t.Parallel()

		ws := uuid.New()
		var created *domain.Project
		store := &mockDataStore{
			projects: &mockProjectRepo{
				createFunc: func(_ context.Context, p *domain.Project) error {
					created = p
					return nil
				},
			},
		}
		rec := &mockRecorder{}
		_, api := humatest.New(t)
		v1.RegisterProjectRoutes(api, store, rec)

		resp := api.PostCtx(adminCtx(ws), "/projects", map[string]any{
			"name":        "Customer Portal",
			"description": "self-service billing",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.Project
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "Customer Portal", body.Name)
		assert.Equal(t, "CP", body.Key)
		assert.Equal(t, ws, body.WorkspaceID)
		require.NotNil(t, created)
		assert.Equal(t, created.ID, body.ID)

		require.Len(t, rec.recorded, 1)
		entry := rec.recorded[0]
		assert.Equal(t, domain.EntityProject, entry.EntityType)
		assert.Equal(t, body.ID.String(), entry.EntityID)
		assert.Equal(t, "Customer Portal", entry.EntityName)
		assert.Equal(t, domain.ActionCreated, entry.Action)
		assert.Equal(t, "u-admin", entry.ActorID)
		assert.Equal(t, "Ada Admin", entry.ActorName)
		require.NotNil(t, entry.ProjectID)
		assert.Equal(t, body.ID, *entry.ProjectID)
	})

	t.Run("member_forbidden", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterProjectRoutes(api, &mockDataStore{projects: &mockProjectRepo{}}, &mockRecorder{})

		resp := api.PostCtx(memberCtx(uuid.New()), "/projects", map[string]any{"name": "x"})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("blank_name", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterProjectRoutes(api, &mockDataStore{projects: &mockProjectRepo{}}, &mockRecorder{})

		resp := api.PostCtx(adminCtx(uuid.New()), "/projects", map[string]any{"name": "   "})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("store_errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			err  error
			want int
		}{
			{"conflict", domain.ErrConflict, http.StatusConflict},
			{"db", errors.New("db: connection refused"), http.StatusInternalServerError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				rec := &mockRecorder{}
				store := &mockDataStore{
					projects: &mockProjectRepo{
						createFunc: func(context.Context, *domain.Project) error { return tt.err },
					},
				}
				_, api := humatest.New(t)
				v1.RegisterProjectRoutes(api, store, rec)

				resp := api.PostCtx(adminCtx(uuid.New()), "/projects", map[string]any{"name": "Ops"})
				assert.Equal(t, tt.want, resp.Code)
				assert.Empty(t, rec.recorded)
			})
		}
	})

	t.Run("record_failure_still_creates", func(t *testing.T) {
		t.Parallel()

		store := &mockDataStore{
			projects: &mockProjectRepo{
				createFunc: func(context.Context, *domain.Project) error { return nil },
			},
		}
		rec := &mockRecorder{recordFunc: func(context.Context, *domain.LogEntry) error {
			return errors.New("append failed")
		}}
		_, api := humatest.New(t)
		v1.RegisterProjectRoutes(api, store, rec)

		resp := api.PostCtx(adminCtx(uuid.New()), "/projects", map[string]any{"name": "Ops"})
		assert.Equal(t, http.StatusOK, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET /projects, GET /projects/{id}
// ---------------------------------------------------------------------------

func TestListProjects(t *testing.T) {
	t.Parallel()

	ws := uuid.New()
	store := &mockDataStore{
		projects: &mockProjectRepo{
			listFunc: func(_ context.Context, workspaceID uuid.UUID) ([]*domain.Project, error) {
				assert.Equal(t, ws, workspaceID)
				return []*domain.Project{
					{ID: uuid.New(), WorkspaceID: ws, Name: "A", Key: "A"},
					{ID: uuid.New(), WorkspaceID: ws, Name: "B", Key: "B"},
				}, nil
			},
		},
	}
	_, api := humatest.New(t)
	v1.RegisterProjectRoutes(api, store, &mockRecorder{})

	resp := api.GetCtx(memberCtx(ws), "/projects")
	require.Equal(t, http.StatusOK, resp.Code)

	var body []domain.Project
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body, 2)

	resp = api.GetCtx(context.Background(), "/projects")
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestGetProject(t *testing.T) {
	t.Parallel()

	ws := uuid.New()
	known := uuid.New()
	store := &mockDataStore{
		projects: &mockProjectRepo{
			getByIDFunc: func(_ context.Context, _, id uuid.UUID) (*domain.Project, error) {
				if id == known {
					return &domain.Project{ID: id, WorkspaceID: ws, Name: "Known", Key: "KNO"}, nil
				}
				return nil, domain.ErrNotFound
			},
		},
	}
	_, api := humatest.New(t)
	v1.RegisterProjectRoutes(api, store, &mockRecorder{})

	resp := api.GetCtx(memberCtx(ws), "/projects/"+known.String())
	require.Equal(t, http.StatusOK, resp.Code)

	var body domain.Project
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Known", body.Name)

	resp = api.GetCtx(memberCtx(ws), "/projects/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
