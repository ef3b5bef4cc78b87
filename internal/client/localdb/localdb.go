// Package localdb owns the client's on-disk state: a small sqlite database
// holding the stashed return path and the last known user. It exists so a
// fresh process can paint something sensible before the startup probe
// settles, and so a guard redirect survives a restart.
package localdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/matchpoint-app/matchpoint/internal/client/api"
	"github.com/matchpoint-app/matchpoint/internal/client/migrations"
	"github.com/matchpoint-app/matchpoint/internal/client/repositories/metadata"
)

// DB bundles the open handle and the repositories built on it.
type DB struct {
	db       *sql.DB
	Metadata metadata.Repository
}

// Open opens (or creates) the local database at dsn and applies pending
// migrations. Use ":memory:" for a throwaway store.
func Open(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db, Metadata: metadata.NewSQLiteRepository(db)}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to migrate local db: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Stash exposes the return-path slot as an authflow.ReturnToStash.
func (d *DB) Stash() *Stash { return &Stash{repo: d.Metadata} }

// Stash persists the path a guard redirected away from.
type Stash struct {
	repo metadata.Repository
}

func (s *Stash) Get(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, metadata.KeyReturnTo)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Stash) Set(ctx context.Context, path string) error {
	return s.repo.Set(ctx, metadata.KeyReturnTo, []byte(path))
}

func (s *Stash) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, metadata.KeyReturnTo)
}

// SaveLastUser records the most recent authenticated user. A nil user erases
// the record (logout).
func (d *DB) SaveLastUser(ctx context.Context, user *api.User) error {
	if user == nil {
		return d.Metadata.Delete(ctx, metadata.KeyLastUser)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode last user: %w", err)
	}
	return d.Metadata.Set(ctx, metadata.KeyLastUser, raw)
}

// LastUser returns the recorded user, or nil when none is stored. The value
// is a hint for first paint only; the bootstrap probe remains authoritative.
func (d *DB) LastUser(ctx context.Context) (*api.User, error) {
	raw, err := d.Metadata.Get(ctx, metadata.KeyLastUser)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var user api.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode last user: %w", err)
	}
	return &user, nil
}
