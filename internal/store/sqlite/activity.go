package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/gosuda/trackly/internal/domain"
)

// timeLayout is fixed width so TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const activityColumns = `id, workspace_id, entity_type, entity_id, entity_name, actor_id, actor_name,
	action, project_id, changes, metadata, created_at`

type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
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

	var projectID sql.NullString
	if entry.ProjectID != nil {
		projectID = sql.NullString{String: entry.ProjectID.String(), Valid: true}
	}
	var createdAt sql.NullString
	if !entry.CreatedAt.IsZero() {
		createdAt = sql.NullString{String: entry.CreatedAt.UTC().Format(timeLayout), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO activity_log (id, workspace_id, entity_type, entity_id, entity_name, actor_id, actor_name,
		                           action, project_id, changes, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.WorkspaceID.String(), entry.EntityType, entry.EntityID, entry.EntityName,
		entry.ActorID, entry.ActorName, string(entry.Action), projectID,
		string(changes), string(metadata), createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("activityRepo.Append: %w", domain.ErrConflict)
		}
		return fmt.Errorf("activityRepo.Append: %w", err)
	}

	return nil
}

func (r *ActivityRepo) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+activityColumns+`
		 FROM activity_log WHERE workspace_id = ?
		 ORDER BY seq`,
		workspaceID.String(),
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

	if index == domain.IndexProjectID {
		projectID, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("activityRepo.ListByIndex: project id %q: %w", value, domain.ErrInvalidInput)
		}
		value = projectID.String()
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+activityColumns+`
		 FROM activity_log WHERE workspace_id = ? AND `+string(index)+` = ?
		 ORDER BY seq`,
		workspaceID.String(), value,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.ListByIndex: %w", err)
	}
	defer rows.Close()

	return scanLogEntries(rows, "activityRepo.ListByIndex")
}

func (r *ActivityRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+activityColumns+`
		 FROM activity_log WHERE workspace_id = ? AND id = ?`,
		workspaceID.String(), id.String(),
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

func scanLogEntries(rows *sql.Rows, caller string) ([]*domain.LogEntry, error) {
	entries := make([]*domain.LogEntry, 0)
	for rows.Next() {
		var (
			e         domain.LogEntry
			id, wsID  string
			action    string
			projectID sql.NullString
			changes   string
			metadata  string
			createdAt sql.NullString
		)

		if err := rows.Scan(
			&id, &wsID, &e.EntityType, &e.EntityID, &e.EntityName,
			&e.ActorID, &e.ActorName, &action, &projectID,
			&changes, &metadata, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}

		var err error
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%s: parse id: %w", caller, err)
		}
		if e.WorkspaceID, err = uuid.Parse(wsID); err != nil {
			return nil, fmt.Errorf("%s: parse workspace id: %w", caller, err)
		}
		if projectID.Valid {
			pid, perr := uuid.Parse(projectID.String)
			if perr != nil {
				return nil, fmt.Errorf("%s: parse project id: %w", caller, perr)
			}
			e.ProjectID = &pid
		}
		if err = json.Unmarshal([]byte(changes), &e.Changes); err != nil {
			return nil, fmt.Errorf("%s: unmarshal changes: %w", caller, err)
		}
		if err = json.Unmarshal([]byte(metadata), &e.Metadata); err != nil {
			return nil, fmt.Errorf("%s: unmarshal metadata: %w", caller, err)
		}
		// An unparseable timestamp is kept as missing rather than failing the read.
		if createdAt.Valid {
			if ts, terr := time.Parse(timeLayout, createdAt.String); terr == nil {
				e.CreatedAt = ts.UTC()
			}
		}
		e.Action = domain.Action(action)
		e.Changes = nonNilChanges(e.Changes)
		e.Metadata = nonNilMetadata(e.Metadata)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return entries, nil
}

func isUniqueViolation(err error) bool {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	return sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
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
