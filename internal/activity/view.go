package activity

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/trackly/internal/domain"
)

var (
	// ErrViewClosed is returned when a load resolves after the view was
	// closed. The fetched data is discarded.
	ErrViewClosed = errors.New("activity: view closed") //nolint:gochecknoglobals // sentinel error
	// ErrStaleLoad is returned when a newer Load started before this one
	// resolved. The fetched data is discarded.
	ErrStaleLoad = errors.New("activity: load superseded") //nolint:gochecknoglobals // sentinel error
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
	StatusClosed  Status = "closed"
)

// SnapshotSource loads the entries for a view. *Loader satisfies this.
type SnapshotSource interface {
	Load(ctx context.Context, workspaceID uuid.UUID, scope Scope) (*Snapshot, error)
}

// Rendered is everything the presentation layer needs for one frame.
type Rendered struct {
	Status  Status          `json:"status"`
	Error   string          `json:"error,omitempty"`
	Filter  Filter          `json:"filter"`
	Result  Result          `json:"result"`
	Items   []Item          `json:"items"`
	Facets  Facets          `json:"facets"`
	Project *domain.Project `json:"project,omitempty"`
}

// View owns the filter and page state of one activity screen together with
// the snapshot it was loaded from. It is meant to be driven by a single
// owner; the mutex only guards against a load resolving after Close.
type View struct {
	source      SnapshotSource
	workspaceID uuid.UUID
	scope       Scope

	mu       sync.Mutex
	status   Status
	err      error
	gen      uint64
	snapshot *Snapshot
	filter   Filter
	page     PageState
}

func NewView(source SnapshotSource, workspaceID uuid.UUID, scope Scope) *View {
	return &View{
		source:      source,
		workspaceID: workspaceID,
		scope:       scope,
		status:      StatusIdle,
		page:        PageState{Current: 1},
	}
}

// Load performs the bulk fetch. A failure moves the view to StatusFailed
// and is returned; it is not retried.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.status == StatusClosed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	v.gen++
	gen := v.gen
	v.status = StatusLoading
	v.err = nil
	v.mu.Unlock()

	snap, err := v.source.Load(ctx, v.workspaceID, v.scope)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status == StatusClosed {
		return ErrViewClosed
	}
	if gen != v.gen {
		return ErrStaleLoad
	}
	if err != nil {
		v.status = StatusFailed
		v.err = err
		return err
	}

	v.snapshot = snap
	v.status = StatusReady
	v.clampLocked()
	return nil
}

// Close tears the view down. Any in-flight load is discarded when it resolves.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.status = StatusClosed
	v.snapshot = nil
}

func (v *View) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *View) Filter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *View) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page.Current
}

// SetFilter replaces the filter and returns to the first page.
func (v *View) SetFilter(f Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filter = f
	v.page.Current = 1
}

// ResetFilter clears every constraint.
func (v *View) ResetFilter() {
	v.SetFilter(Filter{})
}

// SetPage moves to page n, clamped into range.
func (v *View) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.page.Current = n
	v.clampLocked()
}

func (v *View) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.page.Current++
	v.clampLocked()
}

func (v *View) PrevPage() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.page.Current--
	v.clampLocked()
}

// Append adds a newly recorded entry to the loaded snapshot. It reports
// false when the view is not ready, the entry is outside the view's scope,
// or the entry is already present.
func (v *View) Append(e *domain.LogEntry) bool {
	if e == nil {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status != StatusReady || v.snapshot == nil {
		return false
	}
	if v.scope.ProjectID != nil && (e.ProjectID == nil || *e.ProjectID != *v.scope.ProjectID) {
		return false
	}
	if slices.ContainsFunc(v.snapshot.Entries, func(x *domain.LogEntry) bool { return x != nil && x.ID == e.ID }) {
		return false
	}

	entries := make([]*domain.LogEntry, 0, len(v.snapshot.Entries)+1)
	entries = append(entries, v.snapshot.Entries...)
	v.snapshot.Entries = append(entries, e)
	v.clampLocked()
	return true
}

// Render derives the current frame. It never fails; a failed or unloaded
// view renders its status and error only.
func (v *View) Render() Rendered {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := Rendered{
		Status: v.status,
		Filter: v.filter,
		Result: Result{Entries: []*domain.LogEntry{}, TotalPages: 1, Page: 1, PageSize: PageSize},
		Items:  []Item{},
	}
	if v.err != nil {
		out.Error = v.err.Error()
	}
	if v.status != StatusReady || v.snapshot == nil {
		return out
	}

	res := Query(v.snapshot.Entries, v.filter, v.page)
	v.page.Current = res.Page

	out.Result = res
	out.Items = Present(res.Entries)
	out.Facets = BuildFacets(v.snapshot.Entries)
	out.Project = v.snapshot.Project
	return out
}

func (v *View) clampLocked() {
	if v.snapshot == nil {
		v.page.Current = max(v.page.Current, 1)
		return
	}
	n := 0
	for _, e := range v.snapshot.Entries {
		if v.filter.Matches(e) {
			n++
		}
	}
	v.page.Current = ClampPage(v.page.Current, TotalPages(n))
}
