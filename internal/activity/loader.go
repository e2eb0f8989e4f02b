package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gosuda/trackly/internal/domain"
)

// ErrFetchFailed wraps any storage failure while loading a snapshot.
var ErrFetchFailed = errors.New("activity: fetch failed") //nolint:gochecknoglobals // sentinel error

// Scope selects which entries a view loads. A nil ProjectID means the whole
// workspace.
type Scope struct {
	ProjectID *uuid.UUID
}

// Snapshot is the in-memory copy of entries a view works on, plus the
// project header when the scope is a single project.
type Snapshot struct {
	Entries []*domain.LogEntry
	Project *domain.Project
}

// Loader performs the single bulk read behind each view activation.
type Loader struct {
	entries  domain.ActivityRepository
	projects domain.ProjectRepository
	lookups  singleflight.Group
}

func NewLoader(entries domain.ActivityRepository, projects domain.ProjectRepository) *Loader {
	return &Loader{entries: entries, projects: projects}
}

// Load fetches the entries for scope. Project-scoped loads read by the
// project index and resolve the project header concurrently.
func (l *Loader) Load(ctx context.Context, workspaceID uuid.UUID, scope Scope) (*Snapshot, error) {
	if scope.ProjectID == nil {
		entries, err := l.entries.List(ctx, workspaceID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		return &Snapshot{Entries: entries}, nil
	}

	projectID := *scope.ProjectID
	snap := &Snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := l.entries.ListByIndex(gctx, workspaceID, domain.IndexProjectID, projectID.String())
		if err != nil {
			return err
		}
		snap.Entries = entries
		return nil
	})
	g.Go(func() error {
		p, err := l.project(gctx, workspaceID, projectID)
		if err != nil {
			return err
		}
		snap.Project = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return snap, nil
}

// projectLookupTimeout bounds a shared header lookup once it no longer
// follows any single caller's context.
const projectLookupTimeout = 10 * time.Second

// project collapses concurrent header lookups for the same project. The
// shared lookup is detached from the caller that started it, so a caller
// going away only abandons its own wait.
func (l *Loader) project(ctx context.Context, workspaceID, projectID uuid.UUID) (*domain.Project, error) {
	key := workspaceID.String() + ":" + projectID.String()
	ch := l.lookups.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), projectLookupTimeout)
		defer cancel()
		return l.projects.GetByID(lookupCtx, workspaceID, projectID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		p, ok := res.Val.(*domain.Project)
		if !ok {
			return nil, fmt.Errorf("activity.Loader.project: unexpected result %T", res.Val)
		}
		return p, nil
	}
}
