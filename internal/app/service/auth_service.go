package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"contactdesk/internal/common"
	"contactdesk/internal/common/security"
	"contactdesk/internal/domain/model"
	"contactdesk/internal/domain/repository"
)

type AuthService struct {
	userRepo repository.UserRepository
	db       *sql.DB // For transactions
}

func NewAuthService(userRepo repository.UserRepository, db *sql.DB) *AuthService {
	return &AuthService{userRepo: userRepo, db: db}
}

// Login resolves the username and verifies the password against the stored
// bcrypt hash. Unknown usernames and bad passwords both come back as
// ErrUnauthorized so the caller cannot distinguish them.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(password, user.PasswordHash) {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// EnsureSeedAdmin guarantees the configured admin account exists with a hash
// the configured password verifies against. Absent account: created. Present
// but no longer verifying: hash overwritten. Idempotent, and the write is an
// upsert inside a transaction so concurrent startups converge on one row.
//
// The configured credentials are a bootstrap convenience; anyone holding the
// environment defaults holds the account.
func (s *AuthService) EnsureSeedAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return common.Errorf("seed admin credentials missing: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil && security.CheckPasswordHash(password, user.PasswordHash) {
		return nil
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to look up seed admin: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %v: %w", err, common.ErrInternalServer)
	}
	defer tx.Rollback() // Rollback if not committed

	admin := &model.User{Username: username, PasswordHash: hash}
	if err := s.userRepo.Upsert(ctx, tx, admin); err != nil {
		return fmt.Errorf("failed to upsert seed admin: %w", err)
	}
	return tx.Commit()
}
