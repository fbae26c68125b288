package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contactdesk/internal/common"
	"contactdesk/internal/domain/model"
)

type ContactRepository interface {
	Create(ctx context.Context, tx *sql.Tx, contact *model.Contact) error
	List(ctx context.Context) ([]model.Contact, error)
	FindByID(ctx context.Context, id int64) (*model.Contact, error)
	Update(ctx context.Context, tx *sql.Tx, contact *model.Contact) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
}

type pgContactRepository struct {
	db *sql.DB
}

func NewPgContactRepository(db *sql.DB) ContactRepository {
	return &pgContactRepository{db: db}
}

func (r *pgContactRepository) Create(ctx context.Context, tx *sql.Tx, c *model.Contact) error {
	query := `INSERT INTO contacts (first_name, last_name, email)
	          VALUES ($1, $2, $3) RETURNING id`

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, c.FirstName, c.LastName, c.Email)
	} else {
		row = r.db.QueryRowContext(ctx, query, c.FirstName, c.LastName, c.Email)
	}
	if err := row.Scan(&c.ID); err != nil {
		return fmt.Errorf("pgContactRepository.Create: %w", err)
	}
	return nil
}

// List returns every contact ordered by ascending id. Full scan, no
// pagination.
func (r *pgContactRepository) List(ctx context.Context) ([]model.Contact, error) {
	query := `SELECT id, first_name, last_name, email
	          FROM contacts ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgContactRepository.List: %w", err)
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email); err != nil {
			return nil, fmt.Errorf("pgContactRepository.List scan: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContactRepository.List rows: %w", err)
	}
	return contacts, nil
}

func (r *pgContactRepository) FindByID(ctx context.Context, id int64) (*model.Contact, error) {
	query := `SELECT id, first_name, last_name, email
	          FROM contacts WHERE id = $1`
	c := &model.Contact{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContactRepository.FindByID: %w", err)
	}
	return c, nil
}

// Update overwrites all three fields of the row. Returns ErrNotFound when the
// id does not exist.
func (r *pgContactRepository) Update(ctx context.Context, tx *sql.Tx, c *model.Contact) error {
	query := `UPDATE contacts SET first_name = $1, last_name = $2, email = $3
	          WHERE id = $4`

	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, c.FirstName, c.LastName, c.Email, c.ID)
	} else {
		res, err = r.db.ExecContext(ctx, query, c.FirstName, c.LastName, c.Email, c.ID)
	}
	if err != nil {
		return fmt.Errorf("pgContactRepository.Update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgContactRepository.Update rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgContactRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	query := `DELETE FROM contacts WHERE id = $1`

	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, id)
	} else {
		res, err = r.db.ExecContext(ctx, query, id)
	}
	if err != nil {
		return fmt.Errorf("pgContactRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgContactRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
