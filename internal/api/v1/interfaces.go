package v1

import (
	"context"

	"github.com/gosuda/trackly/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store and *sqlite.Store satisfy this interface.
type DataStore interface {
	Projects() domain.ProjectRepository
	Activity() domain.ActivityRepository
}

// ActivityRecorder is the write path into the activity log.
// *activity.Recorder satisfies this interface.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *domain.LogEntry) error
}
