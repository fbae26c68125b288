package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contactdesk/internal/common"
	"contactdesk/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *model.User) error
	Upsert(ctx context.Context, tx *sql.Tx, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (username, password_hash)
	          VALUES ($1, $2) RETURNING id, created_at`

	row := r.queryRow(ctx, tx, query, user.Username, user.PasswordHash)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given username already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

// Upsert inserts the user or, when the username is already taken, overwrites
// that row's password hash. Used by the seed bootstrap so that concurrent
// startups converge on a single row.
func (r *pgUserRepository) Upsert(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (username, password_hash)
	          VALUES ($1, $2)
	          ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	          RETURNING id, created_at`

	row := r.queryRow(ctx, tx, query, user.Username, user.PasswordHash)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("pgUserRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, password_hash, created_at
	          FROM users WHERE username = $1`
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, username, password_hash, created_at
	          FROM users WHERE id = $1`
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) queryRow(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) *sql.Row {
	if tx != nil {
		return tx.QueryRowContext(ctx, query, args...)
	}
	return r.db.QueryRowContext(ctx, query, args...)
}
