package licenses

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const licenseSelect = `
    SELECT l.id, l.employee_id, e.first_name || ' ' || e.last_name,
           l.name, COALESCE(l.license_number, ''), COALESCE(l.issuing_authority, ''),
           l.issue_date, l.expiry_date, COALESCE(l.document_url, ''), COALESCE(l.notes, ''),
           l.renewal_pending, l.status, l.created_at, l.updated_at
    FROM licenses l
    JOIN employees e ON e.id = l.employee_id`

func scanLicense(row pgx.Row) (License, error) {
	var l License
	err := row.Scan(
		&l.ID,
		&l.EmployeeID,
		&l.EmployeeName,
		&l.Name,
		&l.LicenseNumber,
		&l.IssuingAuthority,
		&l.IssueDate,
		&l.ExpiryDate,
		&l.DocumentURL,
		&l.Notes,
		&l.RenewalPending,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

func (s *Store) Get(ctx context.Context, id string) (*License, error) {
	l, err := scanLicense(s.DB.QueryRow(ctx, licenseSelect+`
    WHERE l.id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLicenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List ignores filter.Status; statuses are re-derived by the service.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]License, error) {
	var conds []string
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conds = append(conds, fmt.Sprintf("l.employee_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	rows, err := s.DB.Query(ctx, licenseSelect+`
    `+where+`
    ORDER BY l.expiry_date ASC NULLS LAST, l.name, l.id
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, employeeID string, in CreateInput, status string) (*License, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO licenses
      (employee_id, name, license_number, issuing_authority, issue_date, expiry_date,
       document_url, notes, renewal_pending, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, employeeID, in.Name, db.NullIfEmpty(in.LicenseNumber), db.NullIfEmpty(in.IssuingAuthority),
		in.IssueDate, in.ExpiryDate, db.NullIfEmpty(in.DocumentURL), db.NullIfEmpty(in.Notes),
		in.RenewalPending, status).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Update(ctx context.Context, id string, in UpdateInput, status string) error {
	patch := db.NewPatch().Touch("updated_at")
	db.SetPtr(patch, "name", in.Name)
	db.SetText(patch, "license_number", in.LicenseNumber)
	db.SetText(patch, "issuing_authority", in.IssuingAuthority)
	db.SetOptional(patch, "issue_date", in.IssueDate)
	db.SetOptional(patch, "expiry_date", in.ExpiryDate)
	db.SetText(patch, "document_url", in.DocumentURL)
	db.SetText(patch, "notes", in.Notes)
	db.SetPtr(patch, "renewal_pending", in.RenewalPending)
	patch.Set("status", status)
	sql, args, err := patch.Build("licenses", db.Eq("id", id))
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLicenseNotFound
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE licenses
    SET status = $1, updated_at = now()
    WHERE id = $2
  `, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLicenseNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM licenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLicenseNotFound
	}
	return nil
}

func (s *Store) EmployeeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
