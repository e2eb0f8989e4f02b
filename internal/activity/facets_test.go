package activity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/trackly/internal/activity"
	"github.com/gosuda/trackly/internal/domain"
)

func TestBuildFacets(t *testing.T) {
	t.Parallel()

	f := activity.BuildFacets(mixedEntries())

	assert.Equal(t, []string{"project", "sprint", "task"}, f.EntityTypes)
	assert.Equal(t, []string{"commented", "created", "sprint_started", "updated"}, f.Actions)
	assert.Equal(t, []activity.ActorOption{
		{ID: "u1", Name: "Ada"},
		{ID: "u2", Name: "Grace"},
		{ID: "u3", Name: activity.UnknownActor},
	}, f.Actors)
}

func TestBuildFacets_SkipsEmptyValues(t *testing.T) {
	t.Parallel()

	e := entryAt(1)
	e.EntityType = ""
	e.ActorID = ""
	e.Action = ""

	f := activity.BuildFacets([]*domain.LogEntry{e, nil})
	assert.Empty(t, f.EntityTypes)
	assert.Empty(t, f.Actors)
	assert.Empty(t, f.Actions)
}

func TestBuildFacets_FirstNonEmptyActorName(t *testing.T) {
	t.Parallel()

	a := entryAt(1)
	a.ActorID, a.ActorName = "u7", ""
	b := entryAt(2)
	b.ActorID, b.ActorName = "u7", "Linus"
	c := entryAt(3)
	c.ActorID, c.ActorName = "u7", "Renamed Later"

	f := activity.BuildFacets([]*domain.LogEntry{a, b, c})
	assert.Equal(t, []activity.ActorOption{{ID: "u7", Name: "Linus"}}, f.Actors)
}
