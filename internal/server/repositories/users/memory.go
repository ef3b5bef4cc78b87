package users

import (
	"context"
	"sync"

	"github.com/matchpoint-app/matchpoint/internal/common"
	"github.com/matchpoint-app/matchpoint/internal/server/models"
)

// MemoryRepository is an in-memory Repository used by unit tests and by the
// server's -memory mode (no Postgres required).
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.BirthData != nil {
		bd := *u.BirthData
		c.BirthData = &bd
	}
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return user, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) UpdateBasicProfile(ctx context.Context, id, displayName, bio, gender string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.DisplayName, u.Bio, u.Gender = displayName, bio, gender
	return nil
}

func (r *MemoryRepository) UpdateBirthData(ctx context.Context, id string, bd *models.BirthData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	copied := *bd
	u.BirthData = &copied
	return nil
}

func (r *MemoryRepository) UpdatePhotoKey(ctx context.Context, id, photoKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PhotoKey = photoKey
	return nil
}
