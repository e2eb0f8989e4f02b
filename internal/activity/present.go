package activity

import "github.com/gosuda/trackly/internal/domain"

// Item is an entry together with its derived label and diff rows.
type Item struct {
	Entry *domain.LogEntry `json:"entry"`
	Label Label            `json:"label"`
	Diff  []DiffRow        `json:"diff"`
}

// Present derives the label and diff for each entry.
func Present(entries []*domain.LogEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		items = append(items, Item{
			Entry: e,
			Label: Describe(e),
			Diff:  RenderChanges(e.Changes),
		})
	}
	return items
}
