package contacts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"opsflow/internal/platform/db"
)

type Store struct {
	DB db.Conn
}

func NewStore(conn db.Conn) *Store {
	return &Store{DB: conn}
}

func (s *Store) Transaction(ctx context.Context, fn func(StoreAPI) error) error {
	return db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		return fn(&Store{DB: tx})
	})
}

const contactColumns = `id, employee_id, full_name, relationship, phone,
           COALESCE(email, ''), COALESCE(address, ''), is_primary, created_at, updated_at`

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID,
		&c.EmployeeID,
		&c.FullName,
		&c.Relationship,
		&c.Phone,
		&c.Email,
		&c.Address,
		&c.IsPrimary,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (s *Store) LockEmployee(ctx context.Context, employeeID string) error {
	var id string
	err := s.DB.QueryRow(ctx, `SELECT id::text FROM employees WHERE id = $1 FOR UPDATE`, employeeID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEmployeeNotFound
	}
	return err
}

func (s *Store) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, employeeID).Scan(&exists)
	return exists, err
}

func (s *Store) List(ctx context.Context, employeeID string) ([]Contact, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+contactColumns+`
    FROM emergency_contacts
    WHERE employee_id = $1
    ORDER BY is_primary DESC, created_at ASC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, employeeID, id string) (*Contact, error) {
	c, err := scanContact(s.DB.QueryRow(ctx, `
    SELECT `+contactColumns+`
    FROM emergency_contacts
    WHERE employee_id = $1 AND id = $2
  `, employeeID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) Create(ctx context.Context, employeeID string, in CreateInput) (*Contact, error) {
	c, err := scanContact(s.DB.QueryRow(ctx, `
    INSERT INTO emergency_contacts (employee_id, full_name, relationship, phone, email, address, is_primary)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING `+contactColumns,
		employeeID, in.FullName, in.Relationship, in.Phone,
		db.NullIfEmpty(in.Email), db.NullIfEmpty(in.Address), in.IsPrimary))
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, ErrPrimaryConflict
		case db.IsForeignKeyViolation(err):
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) Update(ctx context.Context, employeeID, id string, in UpdateInput) error {
	patch := db.NewPatch().Touch("updated_at")
	db.SetPtr(patch, "full_name", in.FullName)
	db.SetPtr(patch, "relationship", in.Relationship)
	db.SetPtr(patch, "phone", in.Phone)
	db.SetText(patch, "email", in.Email)
	db.SetText(patch, "address", in.Address)
	db.SetPtr(patch, "is_primary", in.IsPrimary)
	if patch.Empty() {
		_, err := s.Get(ctx, employeeID, id)
		return err
	}
	sql, args, err := patch.Build("emergency_contacts", db.Eq("id", id), db.Eq("employee_id", employeeID))
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrPrimaryConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

func (s *Store) ClearPrimary(ctx context.Context, employeeID, exceptID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE emergency_contacts
    SET is_primary = false, updated_at = now()
    WHERE employee_id = $1 AND is_primary AND ($2 = '' OR id::text <> $2)
  `, employeeID, exceptID)
	return err
}

func (s *Store) Delete(ctx context.Context, employeeID, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM emergency_contacts WHERE employee_id = $1 AND id = $2`, employeeID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}
