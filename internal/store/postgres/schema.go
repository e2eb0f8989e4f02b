package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied statement by statement on startup. Every statement is
// idempotent. The trigger keeps activity_log append-only even for clients
// that bypass the application.
var schema = []string{ //nolint:gochecknoglobals // static DDL
	`CREATE TABLE IF NOT EXISTS projects (
		id           UUID PRIMARY KEY,
		workspace_id UUID NOT NULL,
		name         TEXT NOT NULL,
		key          TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS projects_workspace_idx ON projects (workspace_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		seq          BIGSERIAL PRIMARY KEY,
		id           UUID NOT NULL UNIQUE,
		workspace_id UUID NOT NULL,
		entity_type  TEXT NOT NULL,
		entity_id    TEXT NOT NULL,
		entity_name  TEXT NOT NULL DEFAULT '',
		actor_id     TEXT NOT NULL DEFAULT '',
		actor_name   TEXT NOT NULL DEFAULT '',
		action       TEXT NOT NULL,
		project_id   UUID,
		changes      JSONB NOT NULL DEFAULT '[]',
		metadata     JSONB NOT NULL DEFAULT '{}',
		created_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS activity_log_project_idx ON activity_log (workspace_id, project_id)`,
	`CREATE INDEX IF NOT EXISTS activity_log_entity_idx ON activity_log (workspace_id, entity_type, entity_id)`,
	`CREATE INDEX IF NOT EXISTS activity_log_actor_idx ON activity_log (workspace_id, actor_id)`,
	`CREATE OR REPLACE FUNCTION activity_log_reject_mutation() RETURNS trigger AS $$
	BEGIN
		RAISE EXCEPTION 'activity_log is append-only';
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS activity_log_append_only ON activity_log`,
	`CREATE TRIGGER activity_log_append_only
		BEFORE UPDATE OR DELETE ON activity_log
		FOR EACH ROW EXECUTE FUNCTION activity_log_reject_mutation()`,
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i, err)
		}
	}
	return nil
}
