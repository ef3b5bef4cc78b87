package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/matchpoint-app/matchpoint/internal/common"
	"github.com/matchpoint-app/matchpoint/internal/dbx"
	"github.com/matchpoint-app/matchpoint/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, email, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.IsAdmin).Scan(&user.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "duplicate") {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const userColumns = `id, email, password_hash, is_admin, display_name, bio, gender,
	photo_key, birth_date, birth_time, birth_location, created_at`

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var birthDate, birthTime, birthLocation sql.NullString

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsAdmin,
		&user.DisplayName, &user.Bio, &user.Gender, &user.PhotoKey,
		&birthDate, &birthTime, &birthLocation, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if birthDate.Valid {
		user.BirthData = &models.BirthData{
			BirthDate:     birthDate.String,
			BirthTime:     birthTime.String,
			BirthLocation: birthLocation.String,
		}
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) UpdateBasicProfile(ctx context.Context, id, displayName, bio, gender string) error {
	query :=
		`UPDATE users SET display_name = $2, bio = $3, gender = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, displayName, bio, gender)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func (r *PostgresRepository) UpdateBirthData(ctx context.Context, id string, bd *models.BirthData) error {
	query :=
		`UPDATE users SET birth_date = $2, birth_time = $3, birth_location = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, bd.BirthDate, bd.BirthTime, bd.BirthLocation)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func (r *PostgresRepository) UpdatePhotoKey(ctx context.Context, id, photoKey string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET photo_key = $2 WHERE id = $1`, id, photoKey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
