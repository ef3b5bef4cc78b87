// Package repomanager wires repository implementations to a database handle,
// so services can ask for repositories bound to either the shared *sql.DB or
// an in-flight transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/matchpoint-app/matchpoint/internal/dbx"
	"github.com/matchpoint-app/matchpoint/internal/server/repositories/sessions"
	"github.com/matchpoint-app/matchpoint/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
