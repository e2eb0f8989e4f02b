package activity_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/trackly/internal/activity"
	"github.com/gosuda/trackly/internal/domain"
)

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
// Mock SnapshotSource
// ---------------------------------------------------------------------------

type mockSource struct {
	loadFunc func(ctx context.Context, workspaceID uuid.UUID, scope activity.Scope) (*activity.Snapshot, error)
}

func (m *mockSource) Load(ctx context.Context, workspaceID uuid.UUID, scope activity.Scope) (*activity.Snapshot, error) {
	return m.loadFunc(ctx, workspaceID, scope)
}

func staticSource(entries ...*domain.LogEntry) *mockSource {
	return &mockSource{
		loadFunc: func(_ context.Context, _ uuid.UUID, _ activity.Scope) (*activity.Snapshot, error) {
			return &activity.Snapshot{Entries: entries}, nil
		},
	}
}

// ---------------------------------------------------------------------------
// Mock PubSubPublisher
// ---------------------------------------------------------------------------

type published struct {
	channel string
	payload []byte
}

type mockPublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (m *mockPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, published{channel: channel, payload: payload})
	return nil
}
