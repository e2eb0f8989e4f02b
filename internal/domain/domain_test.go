package domain_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/trackly/internal/domain"
)

// ---------------------------------------------------------------------------
// 1. NewProject -- validation, normalization and key derivation.
// ---------------------------------------------------------------------------

func TestNewProject(t *testing.T) {
	t.Parallel()

	ws := uuid.New()

	tests := []struct {
		name     string
		ws       uuid.UUID
		pname    string
		key      string
		wantName string
		wantKey  string
		wantErr  string
	}{
		{name: "derives initials", ws: ws, pname: "Customer Portal", wantName: "Customer Portal", wantKey: "CP"},
		{name: "at most three initials", ws: ws, pname: "Big Internal Data Platform", wantName: "Big Internal Data Platform", wantKey: "BID"},
		{name: "single word prefix", ws: ws, pname: "Mobile", wantName: "Mobile", wantKey: "MOB"},
		{name: "short single word", ws: ws, pname: "ui", wantName: "ui", wantKey: "UI"},
		{name: "explicit key uppercased", ws: ws, pname: "Mobile", key: " mob ", wantName: "Mobile", wantKey: "MOB"},
		{name: "name trimmed", ws: ws, pname: "  Website Redesign  ", wantName: "Website Redesign", wantKey: "WR"},
		{name: "non-ascii initials", ws: ws, pname: "Élan Über", wantName: "Élan Über", wantKey: "ÉÜ"},
		{name: "nil workspace", ws: uuid.Nil, pname: "Mobile", wantErr: "workspace ID is required"},
		{name: "blank name", ws: ws, pname: "   ", wantErr: "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := domain.NewProject(tt.ws, tt.pname, tt.key, "desc")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, p.ID)
			assert.Equal(t, tt.ws, p.WorkspaceID)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, tt.wantKey, p.Key)
			assert.Equal(t, "desc", p.Description)
			assert.False(t, p.CreatedAt.IsZero())
		})
	}
}

func TestNewProject_UniqueIDs(t *testing.T) {
	t.Parallel()

	ws := uuid.New()
	a, err := domain.NewProject(ws, "Alpha", "", "")
	require.NoError(t, err)
	b, err := domain.NewProject(ws, "Alpha", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

// ---------------------------------------------------------------------------
// 2. ActivityIndex -- whitelist of indexed columns.
// ---------------------------------------------------------------------------

func TestActivityIndex_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		index domain.ActivityIndex
		want  bool
	}{
		{domain.IndexProjectID, true},
		{domain.IndexEntityID, true},
		{domain.IndexEntityType, true},
		{domain.IndexActorID, true},
		{domain.IndexAction, true},
		{"workspace_id", false},
		{"created_at", false},
		{"action; DROP TABLE activity_log", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.index), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.index.Valid())
		})
	}
}

// ---------------------------------------------------------------------------
// 3. Sentinel errors -- distinctness and wrapping.
// ---------------------------------------------------------------------------

func TestSentinelErrors_Distinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrInvalidInput,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}

			t.Run(a.Error()+"!="+b.Error(), func(t *testing.T) {
				t.Parallel()

				assert.NotErrorIs(t, a, b, "sentinel errors must be distinct")
			})
		}
	}
}

func TestSentinelErrors_WrappingPreservesIdentity(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []error{
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrInvalidInput,
	} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("outer: %w", sentinel)
			require.ErrorIs(t, wrapped, sentinel)

			doubleWrapped := fmt.Errorf("outer2: %w", wrapped)
			require.ErrorIs(t, doubleWrapped, sentinel)
		})
	}
}

// ---------------------------------------------------------------------------
// 4. Action constants -- stored string values are part of the data format.
// ---------------------------------------------------------------------------

func TestActionConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.Action("created"), domain.ActionCreated)
	assert.Equal(t, domain.Action("status_changed"), domain.ActionStatusChanged)
	assert.Equal(t, domain.Action("sprint_started"), domain.ActionSprintStarted)
	assert.Equal(t, domain.Action("sprint_completed"), domain.ActionSprintCompleted)
	assert.Equal(t, domain.Action("member_added"), domain.ActionMemberAdded)
	assert.Equal(t, domain.Action("member_removed"), domain.ActionMemberRemoved)
}
