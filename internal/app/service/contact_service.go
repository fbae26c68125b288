package service

import (
	"context"
	"database/sql"
	"strings"

	"contactdesk/internal/common"
	"contactdesk/internal/common/screen"
	"contactdesk/internal/domain/model"
	"contactdesk/internal/domain/repository"
)

type ContactService struct {
	contactRepo repository.ContactRepository
	db          *sql.DB // For transactions
}

func NewContactService(contactRepo repository.ContactRepository, db *sql.DB) *ContactService {
	return &ContactService{contactRepo: contactRepo, db: db}
}

type ContactRequest struct {
	FirstName string
	LastName  string
	Email     string
}

// trimmed returns the request with every field stripped of surrounding
// whitespace. Trimming happens before screening and before storage.
func (req ContactRequest) trimmed() ContactRequest {
	return ContactRequest{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
	}
}

// CreateContact screens the fields and appends a new record. The returned
// contact carries the assigned id.
func (s *ContactService) CreateContact(ctx context.Context, req ContactRequest) (*model.Contact, error) {
	req = req.trimmed()
	if errs := screen.Contact(req.FirstName, req.LastName, req.Email); errs != nil {
		return nil, errs
	}

	contact := &model.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %v: %w", err, common.ErrInternalServer)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.contactRepo.Create(ctx, tx, contact); err != nil {
		return nil, common.Errorf("failed to create contact: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %v: %w", err, common.ErrInternalServer)
	}
	return contact, nil
}

func (s *ContactService) ListContacts(ctx context.Context) ([]model.Contact, error) {
	return s.contactRepo.List(ctx)
}

func (s *ContactService) GetContact(ctx context.Context, id int64) (*model.Contact, error) {
	return s.contactRepo.FindByID(ctx, id)
}

// UpdateContact overwrites all three fields of an existing record. Screening
// is all-or-nothing: if any field fails, no field is applied.
func (s *ContactService) UpdateContact(ctx context.Context, id int64, req ContactRequest) (*model.Contact, error) {
	req = req.trimmed()
	if errs := screen.Contact(req.FirstName, req.LastName, req.Email); errs != nil {
		return nil, errs
	}

	contact := &model.Contact{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %v: %w", err, common.ErrInternalServer)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.contactRepo.Update(ctx, tx, contact); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %v: %w", err, common.ErrInternalServer)
	}
	return contact, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %v: %w", err, common.ErrInternalServer)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.contactRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit transaction: %v: %w", err, common.ErrInternalServer)
	}
	return nil
}
