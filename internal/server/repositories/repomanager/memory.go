package repomanager

import (
	"context"
	"database/sql"

	"github.com/matchpoint-app/matchpoint/internal/dbx"
	"github.com/matchpoint-app/matchpoint/internal/server/repositories/sessions"
	"github.com/matchpoint-app/matchpoint/internal/server/repositories/users"
)

// MemoryRepositoryManager returns the same in-memory repositories regardless
// of the db handle passed in. Used by unit tests and the -memory server mode.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	sessions *sessions.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		sessions: sessions.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return m.sessions
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}
