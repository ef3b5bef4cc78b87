// Package users contains the user repository interface and its
// implementations.
package users

import (
	"context"

	"github.com/matchpoint-app/matchpoint/internal/server/models"
)

// Repository is the persistence surface for user accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateBasicProfile(ctx context.Context, id, displayName, bio, gender string) error
	UpdateBirthData(ctx context.Context, id string, bd *models.BirthData) error
	UpdatePhotoKey(ctx context.Context, id, photoKey string) error
}
