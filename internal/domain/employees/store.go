package employees

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

const employeeColumns = `id, first_name, last_name, email,
           COALESCE(phone, ''), COALESCE(position, ''), COALESCE(department, ''),
           status, hire_date, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Phone,
		&e.Position,
		&e.Department,
		&e.Status,
		&e.HireDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (s *Store) Get(ctx context.Context, id string) (*Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func listWhere(filter ListFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conds = append(conds, fmt.Sprintf("department = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Employee, error) {
	where, args := listWhere(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	rows, err := s.DB.Query(ctx, fmt.Sprintf(`
    SELECT `+employeeColumns+`
    FROM employees
    %s
    ORDER BY last_name, first_name, id
    LIMIT $%d OFFSET $%d
  `, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhere(filter)
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees "+where, args...).Scan(&count)
	return count, err
}

func (s *Store) Create(ctx context.Context, in CreateInput) (*Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, `
    INSERT INTO employees (first_name, last_name, email, phone, position, department, status, hire_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING `+employeeColumns,
		in.FirstName, in.LastName, in.Email, db.NullIfEmpty(in.Phone), db.NullIfEmpty(in.Position),
		db.NullIfEmpty(in.Department), in.Status, in.HireDate))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store) Update(ctx context.Context, id string, in UpdateInput) error {
	patch := db.NewPatch().Touch("updated_at")
	db.SetPtr(patch, "first_name", in.FirstName)
	db.SetPtr(patch, "last_name", in.LastName)
	db.SetPtr(patch, "email", in.Email)
	db.SetText(patch, "phone", in.Phone)
	db.SetText(patch, "position", in.Position)
	db.SetText(patch, "department", in.Department)
	db.SetPtr(patch, "status", in.Status)
	db.SetOptional(patch, "hire_date", in.HireDate)
	if patch.Empty() {
		_, err := s.Get(ctx, id)
		return err
	}
	sql, args, err := patch.Build("employees", db.Eq("id", id))
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
