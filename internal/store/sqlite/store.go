// Package sqlite is a single-file storage backend for local and embedded
// deployments. It implements the same repositories as the postgres store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gosuda/trackly/internal/domain"
)

// driverName is the name mattn/go-sqlite3 registers itself under.
const driverName = "sqlite3"

type Store struct {
	db       *sql.DB
	activity *ActivityRepo
	projects *ProjectRepo
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}

	// SQLite serialises writers; one connection avoids SQLITE_BUSY under load
	// and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: ping: %w", err)
	}

	_, err = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: enable foreign keys: %w", err)
	}

	err = migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}

	return &Store{
		db:       db,
		activity: NewActivityRepo(db),
		projects: NewProjectRepo(db),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database file is still usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite.Store.Ping: %w", err)
	}
	return nil
}

func (s *Store) Activity() domain.ActivityRepository { return s.activity }
func (s *Store) Projects() domain.ProjectRepository  { return s.projects }
