// Package sessions contains the login-session repository interface and its
// implementations.
package sessions

import (
	"context"

	"github.com/matchpoint-app/matchpoint/internal/server/models"
)

// Repository is the persistence surface for login sessions.
type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// RotateCSRF stores token as the session's only valid CSRF token,
	// invalidating any previously issued one.
	RotateCSRF(ctx context.Context, id, token string) error
}
