package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{ //nolint:gochecknoglobals // static DDL
	`CREATE TABLE IF NOT EXISTS projects (
		id           TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		name         TEXT NOT NULL,
		key          TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS projects_workspace_idx ON projects (workspace_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		seq          INTEGER PRIMARY KEY AUTOINCREMENT,
		id           TEXT NOT NULL UNIQUE,
		workspace_id TEXT NOT NULL,
		entity_type  TEXT NOT NULL,
		entity_id    TEXT NOT NULL,
		entity_name  TEXT NOT NULL DEFAULT '',
		actor_id     TEXT NOT NULL DEFAULT '',
		actor_name   TEXT NOT NULL DEFAULT '',
		action       TEXT NOT NULL,
		project_id   TEXT,
		changes      TEXT NOT NULL DEFAULT '[]',
		metadata     TEXT NOT NULL DEFAULT '{}',
		created_at   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS activity_log_project_idx ON activity_log (workspace_id, project_id)`,
	`CREATE INDEX IF NOT EXISTS activity_log_entity_idx ON activity_log (workspace_id, entity_type, entity_id)`,
	`CREATE INDEX IF NOT EXISTS activity_log_actor_idx ON activity_log (workspace_id, actor_id)`,
	`CREATE TRIGGER IF NOT EXISTS activity_log_no_update
		BEFORE UPDATE ON activity_log
		BEGIN SELECT RAISE(ABORT, 'activity_log is append-only'); END`,
	`CREATE TRIGGER IF NOT EXISTS activity_log_no_delete
		BEFORE DELETE ON activity_log
		BEGIN SELECT RAISE(ABORT, 'activity_log is append-only'); END`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i, err)
		}
	}
	return nil
}
