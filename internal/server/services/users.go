// Package services contains the server's application services: accounts and
// sessions, profile updates, photo storage, and location search.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/matchpoint-app/matchpoint/internal/common"
	"github.com/matchpoint-app/matchpoint/internal/dbx"
	"github.com/matchpoint-app/matchpoint/internal/server/auth"
	"github.com/matchpoint-app/matchpoint/internal/server/config"
	"github.com/matchpoint-app/matchpoint/internal/server/models"
	"github.com/matchpoint-app/matchpoint/internal/server/repositories/repomanager"
)

// UserService owns accounts and login sessions. The session cookie value it
// returns is a signed token referencing a revocable session row; it is meant
// to be set as an httpOnly cookie by the transport layer, never handed to
// page scripts or stored client-side outside the cookie jar.
type UserService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	secretKey               []byte
	sessionValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                      db,
		repomanager:             m,
		secretKey:               []byte(cfg.SecretKey),
		sessionValidityDuration: cfg.SessionValidityDuration,
	}
}

// withTx runs fn transactionally when a database handle is present. In
// memory mode there is no *sql.DB; the in-memory repositories ignore the
// handle, so fn runs directly.
func (s *UserService) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, s.db, nil, fn)
}

func validateCredentials(email, password string) error {
	fields := map[string]string{}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		return &common.ValidationError{Fields: fields}
	}
	return nil
}

// Register creates an account and immediately opens a session for it,
// so the register response can set the session cookie the same way login does.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}

	var token string
	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		token, err = s.openSession(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, "", common.NewValidationError("email", "already registered")
		}
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords both map to ErrUnauthenticated so the response does not reveal
// which accounts exist.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrUnauthenticated
		}
		return nil, "", common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", common.ErrUnauthenticated
	}

	token, err := s.openSession(ctx, s.db, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *UserService) openSession(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.sessionValidityDuration),
	}

	if err := s.repomanager.Sessions(db).Create(ctx, session); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}

	token, err := auth.GenerateSessionToken(session.ID, s.secretKey, s.sessionValidityDuration)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}

	return token, nil
}

// Logout revokes the session referenced by tokenString. Invalid tokens are
// ignored: logging out an already-dead session is a no-op, not an error.
func (s *UserService) Logout(ctx context.Context, tokenString string) error {
	sessionID, err := auth.GetSessionIDFromToken(tokenString, s.secretKey)
	if err != nil {
		return nil
	}
	return s.repomanager.Sessions(s.db).Delete(ctx, sessionID)
}

// CurrentUser resolves tokenString to the logged-in user and their session.
// Every failure mode (bad token, revoked or expired session, missing user)
// maps to ErrUnauthenticated; the /me handler turns that into the
// auth:"unauthenticated" payload rather than an error status.
func (s *UserService) CurrentUser(ctx context.Context, tokenString string) (*models.User, *models.Session, error) {
	sessionID, err := auth.GetSessionIDFromToken(tokenString, s.secretKey)
	if err != nil {
		return nil, nil, common.ErrUnauthenticated
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, sessionID)
	if err != nil {
		return nil, nil, common.ErrUnauthenticated
	}

	if session.ExpiresAt.Before(time.Now()) {
		_ = s.repomanager.Sessions(s.db).Delete(ctx, sessionID)
		return nil, nil, common.ErrUnauthenticated
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, common.ErrUnauthenticated
	}

	return user, session, nil
}

// RotateCSRF issues a fresh CSRF token for the session, invalidating the
// previous one.
func (s *UserService) RotateCSRF(ctx context.Context, sessionID string) (string, error) {
	token, err := auth.NewCSRFToken()
	if err != nil {
		return "", err
	}
	if err := s.repomanager.Sessions(s.db).RotateCSRF(ctx, sessionID, token); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateCSRF checks a presented token against the session's current one.
func (s *UserService) ValidateCSRF(session *models.Session, presented string) error {
	if presented == "" {
		return common.ErrCSRFMissing
	}
	if !auth.CheckCSRFToken(session.CSRFToken, presented) {
		return common.ErrCSRFInvalid
	}
	return nil
}
