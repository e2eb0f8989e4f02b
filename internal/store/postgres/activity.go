package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/trackly/internal/domain"
)

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

const activityColumns = `id, workspace_id, entity_type, entity_id, entity_name, actor_id, actor_name,
	action, project_id, changes, metadata, created_at`

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Append(ctx context.Context, entry *domain.LogEntry) error {
	changes, err := json.Marshal(nonNilChanges(entry.Changes))
	if err != nil {
		return fmt.Errorf("activityRepo.Append: marshal changes: %w", err)
	}
	metadata, err := json.Marshal(nonNilMetadata(entry.Metadata))
	if err != nil {
		return fmt.Errorf("activityRepo.Append: marshal metadata: %w", err)
	}

	var createdAt *time.Time
	if !entry.CreatedAt.IsZero() {
		createdAt = &entry.CreatedAt
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO activity_log (id, workspace_id, entity_type, entity_id, entity_name, actor_id, actor_name,
		                           action, project_id, changes, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.WorkspaceID, entry.EntityType, entry.EntityID, entry.EntityName,
		entry.ActorID, entry.ActorName, string(entry.Action), entry.ProjectID,
		changes, metadata, createdAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("activityRepo.Append: %w", domain.ErrConflict)
		}
		return fmt.Errorf("activityRepo.Append: %w", err)
	}

	return nil
}

func (r *ActivityRepo) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.LogEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+activityColumns+`
		 FROM activity_log WHERE workspace_id = $1
		 ORDER BY seq`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.List: %w", err)
	}
	defer rows.Close()

	return scanLogEntries(rows, "activityRepo.List")
}

func (r *ActivityRepo) ListByIndex(ctx context.Context, workspaceID uuid.UUID, index domain.ActivityIndex, value string) ([]*domain.LogEntry, error) {
	if !index.Valid() {
		return nil, fmt.Errorf("activityRepo.ListByIndex: unknown index %q: %w", index, domain.ErrInvalidInput)
	}

	var arg any = value
	if index == domain.IndexProjectID {
		projectID, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("activityRepo.ListByIndex: project id %q: %w", value, domain.ErrInvalidInput)
		}
		arg = projectID
	}

	// index is whitelisted above, so it is safe to splice in as a column name.
	rows, err := r.pool.Query(ctx,
		`SELECT `+activityColumns+`
		 FROM activity_log WHERE workspace_id = $1 AND `+string(index)+` = $2
		 ORDER BY seq`,
		workspaceID, arg,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.ListByIndex: %w", err)
	}
	defer rows.Close()

	return scanLogEntries(rows, "activityRepo.ListByIndex")
}

func (r *ActivityRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.LogEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+activityColumns+`
		 FROM activity_log WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.GetByID: %w", err)
	}
	defer rows.Close()

	entries, err := scanLogEntries(rows, "activityRepo.GetByID")
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("activityRepo.GetByID: %w", domain.ErrNotFound)
	}

	return entries[0], nil
}

func scanLogEntries(rows pgx.Rows, caller string) ([]*domain.LogEntry, error) {
	entries := make([]*domain.LogEntry, 0)
	for rows.Next() {
		var (
			e         domain.LogEntry
			action    string
			changes   []byte
			metadata  []byte
			createdAt *time.Time
		)

		if err := rows.Scan(
			&e.ID, &e.WorkspaceID, &e.EntityType, &e.EntityID, &e.EntityName,
			&e.ActorID, &e.ActorName, &action, &e.ProjectID,
			&changes, &metadata, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, fmt.Errorf("%s: unmarshal changes: %w", caller, err)
		}
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, fmt.Errorf("%s: unmarshal metadata: %w", caller, err)
		}
		e.Action = domain.Action(action)
		e.Changes = nonNilChanges(e.Changes)
		e.Metadata = nonNilMetadata(e.Metadata)
		if createdAt != nil {
			e.CreatedAt = createdAt.UTC()
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return entries, nil
}

func nonNilChanges(c []domain.Change) []domain.Change {
	if c == nil {
		return []domain.Change{}
	}
	return c
}

func nonNilMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
