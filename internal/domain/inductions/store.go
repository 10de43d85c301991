package inductions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"opsflow/internal/platform/db"
	"opsflow/internal/platform/optional"
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

const inductionSelect = `
    SELECT i.id, i.employee_id, e.first_name || ' ' || e.last_name,
           i.name, COALESCE(i.provider, ''), i.completion_date, i.expiry_date,
           i.status, COALESCE(i.notes, ''), i.created_at, i.updated_at
    FROM inductions i
    JOIN employees e ON e.id = i.employee_id`

func scanInduction(row pgx.Row) (Induction, error) {
	var in Induction
	var notes string
	err := row.Scan(
		&in.ID,
		&in.EmployeeID,
		&in.EmployeeName,
		&in.Name,
		&in.Provider,
		&in.CompletionDate,
		&in.ExpiryDate,
		&in.StoredStatus,
		&notes,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	in.Status = in.StoredStatus
	in.Notes = DecodeNotes(notes)
	return in, err
}

func (s *Store) Get(ctx context.Context, id string) (*Induction, error) {
	in, err := scanInduction(s.DB.QueryRow(ctx, inductionSelect+`
    WHERE i.id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInductionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// List ignores filter.Status; statuses are re-derived by the service.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Induction, error) {
	var conds []string
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conds = append(conds, fmt.Sprintf("i.employee_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	rows, err := s.DB.Query(ctx, inductionSelect+`
    `+where+`
    ORDER BY i.expiry_date ASC NULLS LAST, i.name, i.id
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Induction
	for rows.Next() {
		in, err := scanInduction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, employeeID string, in CreateInput) (*Induction, error) {
	notes, err := EncodeNotes(in.Notes)
	if err != nil {
		return nil, err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO inductions (employee_id, name, provider, completion_date, expiry_date, status, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, employeeID, in.Name, db.NullIfEmpty(in.Provider), in.CompletionDate, in.ExpiryDate,
		in.Status, db.NullIfEmpty(notes)).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Update(ctx context.Context, id string, in UpdateInput) error {
	patch := db.NewPatch().Touch("updated_at")
	db.SetPtr(patch, "name", in.Name)
	db.SetText(patch, "provider", in.Provider)
	db.SetOptional(patch, "completion_date", in.CompletionDate)
	db.SetOptional(patch, "expiry_date", in.ExpiryDate)
	db.SetPtr(patch, "status", in.Status)
	notes, err := optional.Map(in.Notes, EncodeNotes)
	if err != nil {
		return err
	}
	db.SetText(patch, "notes", notes)
	if patch.Empty() {
		_, err := s.Get(ctx, id)
		return err
	}
	sql, args, err := patch.Build("inductions", db.Eq("id", id))
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInductionNotFound
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE inductions
    SET status = $1, updated_at = now()
    WHERE id = $2
  `, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInductionNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM inductions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInductionNotFound
	}
	return nil
}

func (s *Store) EmployeeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
