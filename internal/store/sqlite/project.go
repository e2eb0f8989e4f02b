package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/trackly/internal/domain"
)

type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, workspace_id, name, key, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.WorkspaceID.String(), p.Name, p.Key, p.Description,
		p.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("projectRepo.Create: %w", domain.ErrConflict)
		}
		return fmt.Errorf("projectRepo.Create: %w", err)
	}

	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, workspace_id, name, key, description, created_at
		 FROM projects WHERE workspace_id = ? AND id = ?`,
		workspaceID.String(), id.String(),
	)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", err)
	}

	return p, nil
}

func (r *ProjectRepo) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, workspace_id, name, key, description, created_at
		 FROM projects WHERE workspace_id = ? ORDER BY created_at`,
		workspaceID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("projectRepo.List: %w", err)
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("projectRepo.List: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projectRepo.List: rows: %w", err)
	}

	return projects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (*domain.Project, error) {
	var (
		p               domain.Project
		id, wsID, stamp string
	)

	if err := s.Scan(&id, &wsID, &p.Name, &p.Key, &p.Description, &stamp); err != nil {
		return nil, err
	}

	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	if p.WorkspaceID, err = uuid.Parse(wsID); err != nil {
		return nil, fmt.Errorf("parse workspace id: %w", err)
	}
	if p.CreatedAt, err = time.Parse(timeLayout, stamp); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &p, nil
}
