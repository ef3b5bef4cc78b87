package services

import (
	"context"
	"database/sql"
	"regexp"
	"time"

	"github.com/matchpoint-app/matchpoint/internal/common"
	"github.com/matchpoint-app/matchpoint/internal/server/models"
	"github.com/matchpoint-app/matchpoint/internal/server/repositories/repomanager"
)

// birthTimeRe accepts "HH:mm" only. "HH:mm:ss" must be rejected so the value
// round-trips verbatim through the identity probe.
var birthTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ProfileService owns profile mutations. All updates return the full updated
// user so handlers can echo canonical state.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// UpdateBasic updates display name, bio and gender.
func (s *ProfileService) UpdateBasic(ctx context.Context, userID, displayName, bio, gender string) (*models.User, error) {
	fields := map[string]string{}
	if displayName == "" {
		fields["display_name"] = "must not be empty"
	}
	if len(displayName) > 100 {
		fields["display_name"] = "must be at most 100 characters"
	}
	if len(bio) > 2000 {
		fields["bio"] = "must be at most 2000 characters"
	}
	if len(fields) > 0 {
		return nil, &common.ValidationError{Fields: fields}
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateBasicProfile(ctx, userID, displayName, bio, gender); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, userID)
}

// UpdateBirthData validates and stores astrological birth data.
func (s *ProfileService) UpdateBirthData(ctx context.Context, userID string, bd *models.BirthData) (*models.User, error) {
	fields := map[string]string{}
	if _, err := time.Parse("2006-01-02", bd.BirthDate); err != nil {
		fields["birth_date"] = "must be a valid date in YYYY-MM-DD format"
	}
	if !birthTimeRe.MatchString(bd.BirthTime) {
		fields["birth_time"] = "must be in HH:mm format"
	}
	if bd.BirthLocation == "" {
		fields["birth_location"] = "must not be empty"
	}
	if len(fields) > 0 {
		return nil, &common.ValidationError{Fields: fields}
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateBirthData(ctx, userID, bd); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, userID)
}
