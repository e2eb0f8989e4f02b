package activity

import (
	"slices"
	"time"

	"github.com/gosuda/trackly/internal/domain"
)

// PageSize is the fixed number of entries per page.
const PageSize = 50

// PageState is the 1-based page the viewer is on.
type PageState struct {
	Current int `json:"current"`
}

// Result is one rendered page of the filtered, recency-ordered entries.
type Result struct {
	Entries    []*domain.LogEntry `json:"entries"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	// NoResults is set when the filter matched nothing. It is distinct from
	// an empty page, which clamping prevents.
	NoResults bool `json:"no_results"`
}

// Query filters, sorts and paginates entries. The requested page is clamped
// into range; the clamped value is returned in Result.Page.
func Query(entries []*domain.LogEntry, f Filter, page PageState) Result {
	sorted := SortByRecency(Apply(entries, f))

	total := len(sorted)
	pages := TotalPages(total)
	current := ClampPage(page.Current, pages)

	return Result{
		Entries:    PageSlice(sorted, current),
		Total:      total,
		TotalPages: pages,
		Page:       current,
		PageSize:   PageSize,
		NoResults:  total == 0,
	}
}

// SortByRecency returns a copy of entries ordered by CreatedAt descending.
// Entries with equal timestamps keep their input order; entries without a
// timestamp sort last.
func SortByRecency(entries []*domain.LogEntry) []*domain.LogEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b *domain.LogEntry) int {
		// b before a gives descending order.
		return createdAt(b).Compare(createdAt(a))
	})
	return out
}

func createdAt(e *domain.LogEntry) time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.CreatedAt
}

// TotalPages returns max(1, ceil(n / PageSize)).
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

// ClampPage constrains page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	return min(max(page, 1), totalPages)
}

// PageSlice returns the entries on the given 1-based page.
func PageSlice(entries []*domain.LogEntry, page int) []*domain.LogEntry {
	start := (page - 1) * PageSize
	if start < 0 || start >= len(entries) {
		return []*domain.LogEntry{}
	}
	end := min(start+PageSize, len(entries))
	return entries[start:end]
}
