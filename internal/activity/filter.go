// Package activity implements the activity log query engine: filtering,
// recency ordering, pagination, and the label and diff views derived from
// each entry. Everything except Loader and Recorder is pure and never fails.
package activity

import (
	"github.com/gosuda/trackly/internal/domain"
)

// dateLayout is the prefix of an RFC 3339 UTC timestamp compared by the
// date-range filter.
const dateLayout = "2006-01-02"

// Filter holds the optional constraints of the activity view. Empty fields
// are inactive. DateFrom and DateTo are inclusive YYYY-MM-DD bounds.
type Filter struct {
	EntityType string `json:"entity_type,omitempty"`
	ActorID    string `json:"actor_id,omitempty"`
	Action     string `json:"action,omitempty"`
	DateFrom   string `json:"date_from,omitempty"`
	DateTo     string `json:"date_to,omitempty"`
}

// IsEmpty reports whether no constraint is active.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// Matches reports whether e satisfies every active constraint.
func (f Filter) Matches(e *domain.LogEntry) bool {
	if e == nil {
		return false
	}
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.ActorID != "" && e.ActorID != f.ActorID {
		return false
	}
	if f.Action != "" && string(e.Action) != f.Action {
		return false
	}

	if f.DateFrom == "" && f.DateTo == "" {
		return true
	}

	day, ok := entryDate(e)
	if !ok {
		return false
	}
	if f.DateFrom != "" && day < f.DateFrom {
		return false
	}
	if f.DateTo != "" && day > f.DateTo {
		return false
	}
	return true
}

// Apply returns the entries matching f, preserving input order. The input
// slice is never modified.
func Apply(entries []*domain.LogEntry, f Filter) []*domain.LogEntry {
	out := make([]*domain.LogEntry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// entryDate returns the calendar day of e.CreatedAt in UTC, or false when the
// entry carries no timestamp.
func entryDate(e *domain.LogEntry) (string, bool) {
	if e.CreatedAt.IsZero() {
		return "", false
	}
	return e.CreatedAt.UTC().Format(dateLayout), true
}
