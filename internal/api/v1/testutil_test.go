package v1_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/trackly/internal/domain"
	"github.com/gosuda/trackly/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers -- inject workspace/user/role into context for DoCtx
// ---------------------------------------------------------------------------

func workspaceCtx(workspaceID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyWorkspaceID, workspaceID)
	return ctx
}

func memberCtx(workspaceID uuid.UUID) context.Context {
	ctx := workspaceCtx(workspaceID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, "u-member")
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, middleware.RoleMember)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserName, "Mia Member")
	return ctx
}

func adminCtx(workspaceID uuid.UUID) context.Context {
	ctx := workspaceCtx(workspaceID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, "u-admin")
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, middleware.RoleAdmin)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserName, "Ada Admin")
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	projects domain.ProjectRepository
	activity domain.ActivityRepository
}

func (m *mockDataStore) Projects() domain.ProjectRepository  { return m.projects }
func (m *mockDataStore) Activity() domain.ActivityRepository { return m.activity }

// ---------------------------------------------------------------------------
// Mock ProjectRepository
// ---------------------------------------------------------------------------

type mockProjectRepo struct {
	createFunc  func(ctx context.Context, p *domain.Project) error
	getByIDFunc func(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Project, error)
	listFunc    func(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Project, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return m.createFunc(ctx, p)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Project, error) {
	return m.getByIDFunc(ctx, workspaceID, id)
}

func (m *mockProjectRepo) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Project, error) {
	return m.listFunc(ctx, workspaceID)
}

// ---------------------------------------------------------------------------
// Mock ActivityRepository
// ---------------------------------------------------------------------------

type mockActivityRepo struct {
	appendFunc      func(ctx context.Context, e *domain.LogEntry) error
	listFunc        func(ctx context.Context, workspaceID uuid.UUID) ([]*domain.LogEntry, error)
	listByIndexFunc func(ctx context.Context, workspaceID uuid.UUID, index domain.ActivityIndex, value string) ([]*domain.LogEntry, error)
	getByIDFunc     func(ctx context.Context, workspaceID, id uuid.UUID) (*domain.LogEntry, error)
}

func (m *mockActivityRepo) Append(ctx context.Context, e *domain.LogEntry) error {
	return m.appendFunc(ctx, e)
}

func (m *mockActivityRepo) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.LogEntry, error) {
	return m.listFunc(ctx, workspaceID)
}

func (m *mockActivityRepo) ListByIndex(ctx context.Context, workspaceID uuid.UUID, index domain.ActivityIndex, value string) ([]*domain.LogEntry, error) {
	return m.listByIndexFunc(ctx, workspaceID, index, value)
}

func (m *mockActivityRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.LogEntry, error) {
	return m.getByIDFunc(ctx, workspaceID, id)
}

// ---------------------------------------------------------------------------
// Mock ActivityRecorder
// ---------------------------------------------------------------------------

type mockRecorder struct {
	mu         sync.Mutex
	recorded   []*domain.LogEntry
	recordFunc func(ctx context.Context, e *domain.LogEntry) error
}

func (m *mockRecorder) Record(ctx context.Context, e *domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.recordFunc != nil {
		if err := m.recordFunc(ctx, e); err != nil {
			return err
		}
	}
	m.recorded = append(m.recorded, e)
	return nil
}
