package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action is the verb recorded on an activity entry. Values outside the known
// set are allowed and rendered with a generic label.
type Action string

const (
	ActionCreated         Action = "created"
	ActionUpdated         Action = "updated"
	ActionDeleted         Action = "deleted"
	ActionStatusChanged   Action = "status_changed"
	ActionAssigned        Action = "assigned"
	ActionUnassigned      Action = "unassigned"
	ActionCommented       Action = "commented"
	ActionUploaded        Action = "uploaded"
	ActionSprintStarted   Action = "sprint_started"
	ActionSprintCompleted Action = "sprint_completed"
	ActionMemberAdded     Action = "member_added"
	ActionMemberRemoved   Action = "member_removed"
)

// Entity types written by the application. The column is free-form.
const (
	EntityProject = "project"
	EntityTask    = "task"
	EntitySprint  = "sprint"
	EntityMeeting = "meeting"
	EntityMember  = "member"
)

// Change is a single field-level before/after pair.
type Change struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

// LogEntry is one immutable audit record of an action taken on an entity.
// Entries are written once and never updated or deleted.
type LogEntry struct {
	ID          uuid.UUID      `json:"id"`
	WorkspaceID uuid.UUID      `json:"workspace_id"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	EntityName  string         `json:"entity_name,omitempty"`
	ActorID     string         `json:"actor_id"`
	ActorName   string         `json:"actor_name"` // snapshot at write time
	Action      Action         `json:"action"`
	ProjectID   *uuid.UUID     `json:"project_id,omitempty"`
	Changes     []Change       `json:"changes"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"` // zero when the source record had none
}

// ActivityIndex names a column the activity store can filter on directly.
type ActivityIndex string

const (
	IndexProjectID  ActivityIndex = "project_id"
	IndexEntityID   ActivityIndex = "entity_id"
	IndexEntityType ActivityIndex = "entity_type"
	IndexActorID    ActivityIndex = "actor_id"
	IndexAction     ActivityIndex = "action"
)

// Valid reports whether i is one of the indexed columns.
func (i ActivityIndex) Valid() bool {
	switch i {
	case IndexProjectID, IndexEntityID, IndexEntityType, IndexActorID, IndexAction:
		return true
	default:
		return false
	}
}

// ActivityRepository is append-only. List methods return entries in
// insertion order; callers must not rely on any other ordering.
type ActivityRepository interface {
	Append(ctx context.Context, entry *LogEntry) error
	List(ctx context.Context, workspaceID uuid.UUID) ([]*LogEntry, error)
	ListByIndex(ctx context.Context, workspaceID uuid.UUID, index ActivityIndex, value string) ([]*LogEntry, error)
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*LogEntry, error)
}
