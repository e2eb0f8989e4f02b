package activity_test

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/trackly/internal/domain"
)

//nolint:gochecknoglobals // shared fixture epoch
var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// entryAt builds a task entry created n minutes after epoch.
func entryAt(n int) *domain.LogEntry {
	return &domain.LogEntry{
		ID:          uuid.New(),
		WorkspaceID: uuid.New(),
		EntityType:  domain.EntityTask,
		EntityID:    fmt.Sprintf("task-%d", n),
		EntityName:  fmt.Sprintf("Task %d", n),
		ActorID:     "u1",
		ActorName:   "Ada",
		Action:      domain.ActionUpdated,
		CreatedAt:   epoch.Add(time.Duration(n) * time.Minute),
	}
}

// mixedEntries returns a small varied set in insertion order.
func mixedEntries() []*domain.LogEntry {
	a := entryAt(1)
	b := entryAt(2)
	b.ActorID, b.ActorName = "u2", "Grace"
	b.EntityType = domain.EntityProject
	b.Action = domain.ActionCreated
	c := entryAt(3)
	c.ActorID, c.ActorName = "u2", "Grace"
	d := entryAt(4)
	d.EntityType = domain.EntitySprint
	d.Action = domain.ActionSprintStarted
	e := entryAt(5)
	e.ActorID, e.ActorName = "u3", ""
	e.Action = domain.ActionCommented
	return []*domain.LogEntry{a, b, c, d, e}
}

func ids(entries []*domain.LogEntry) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
