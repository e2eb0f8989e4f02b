package activity

import (
	"cmp"
	"slices"

	"github.com/gosuda/trackly/internal/domain"
)

// UnknownActor is the display name used for actors recorded without a name.
const UnknownActor = "Unknown"

// ActorOption is a selectable actor in the actor facet.
type ActorOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Facets lists the values offered by the filter controls.
type Facets struct {
	EntityTypes []string      `json:"entity_types"`
	Actors      []ActorOption `json:"actors"`
	Actions     []string      `json:"actions"`
}

// BuildFacets enumerates distinct non-empty values over the full, unfiltered
// entry set so that narrowing one filter never hides options in another.
// Entity types and actions are sorted; actors are sorted by name, then ID.
// An actor's name is the first non-empty snapshot seen for that ID.
func BuildFacets(entries []*domain.LogEntry) Facets {
	entityTypes := make(map[string]struct{})
	actions := make(map[string]struct{})
	actors := make(map[string]string)

	for _, e := range entries {
		if e == nil {
			continue
		}
		if e.EntityType != "" {
			entityTypes[e.EntityType] = struct{}{}
		}
		if e.Action != "" {
			actions[string(e.Action)] = struct{}{}
		}
		if e.ActorID != "" {
			if name, seen := actors[e.ActorID]; !seen || name == "" {
				actors[e.ActorID] = e.ActorName
			}
		}
	}

	f := Facets{
		EntityTypes: sortedKeys(entityTypes),
		Actions:     sortedKeys(actions),
		Actors:      make([]ActorOption, 0, len(actors)),
	}
	for id, name := range actors {
		if name == "" {
			name = UnknownActor
		}
		f.Actors = append(f.Actors, ActorOption{ID: id, Name: name})
	}
	slices.SortFunc(f.Actors, func(a, b ActorOption) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return f
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
