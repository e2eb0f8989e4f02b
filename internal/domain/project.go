package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	Key         string    `json:"key"` // short uppercase code shown next to task numbers, e.g. "TRK"
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProject creates a Project with validated required fields and defaults.
func NewProject(workspaceID uuid.UUID, name, key, description string) (*Project, error) {
	if workspaceID == uuid.Nil {
		return nil, errors.New("project: workspace ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("project: name is required")
	}
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" {
		key = deriveProjectKey(name)
	}
	return &Project{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        name,
		Key:         key,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// deriveProjectKey takes the first letter of up to three words, falling back
// to the first three letters of a single-word name.
func deriveProjectKey(name string) string {
	words := strings.Fields(name)
	if len(words) == 1 {
		r := []rune(strings.ToUpper(words[0]))
		if len(r) > 3 {
			r = r[:3]
		}
		return string(r)
	}

	var b strings.Builder
	for i, w := range words {
		if i == 3 {
			break
		}
		b.WriteRune([]rune(strings.ToUpper(w))[0])
	}
	return b.String()
}

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Project, error)
	List(ctx context.Context, workspaceID uuid.UUID) ([]*Project, error)
}
