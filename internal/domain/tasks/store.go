package tasks

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

const taskColumns = `t.id, t.title, COALESCE(t.description, ''), t.status, t.priority,
           t.assignee_id::text, COALESCE(e.first_name || ' ' || e.last_name, ''),
           t.due_date, t.position, t.created_at, t.updated_at`

const taskFrom = `FROM tasks t
    LEFT JOIN employees e ON e.id = t.assignee_id`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.AssigneeID,
		&t.AssigneeName,
		&t.DueDate,
		&t.Position,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (s *Store) Get(ctx context.Context, id string) (*Task, error) {
	t, err := scanTask(s.DB.QueryRow(ctx, `
    SELECT `+taskColumns+`
    `+taskFrom+`
    WHERE t.id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.AssigneeID != "" {
		args = append(args, filter.AssigneeID)
		conds = append(conds, fmt.Sprintf("t.assignee_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+taskColumns+`
    `+taskFrom+`
    `+where+`
    ORDER BY t.status, t.position, t.created_at
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, in CreateInput) (*Task, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO tasks (title, description, status, priority, assignee_id, due_date, position)
    VALUES ($1, $2, $3, $4, $5, $6,
            (SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE status = $3))
    RETURNING id
  `, in.Title, db.NullIfEmpty(in.Description), in.Status, in.Priority, db.NullIfEmpty(in.AssigneeID), in.DueDate).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrAssigneeNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Update(ctx context.Context, id string, in UpdateInput) error {
	patch := db.NewPatch().Touch("updated_at")
	db.SetPtr(patch, "title", in.Title)
	db.SetText(patch, "description", in.Description)
	db.SetPtr(patch, "priority", in.Priority)
	db.SetText(patch, "assignee_id", in.AssigneeID)
	db.SetOptional(patch, "due_date", in.DueDate)
	if patch.Empty() {
		_, err := s.Get(ctx, id)
		return err
	}
	sql, args, err := patch.Build("tasks", db.Eq("id", id))
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrAssigneeNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *Store) ColumnIDs(ctx context.Context, status string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id
    FROM tasks
    WHERE status = $1
    ORDER BY position, created_at
    FOR UPDATE
  `, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) Reorder(ctx context.Context, status string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE tasks t
    SET status = $1,
        position = v.ord - 1,
        updated_at = now()
    FROM unnest($2::uuid[]) WITH ORDINALITY AS v(id, ord)
    WHERE t.id = v.id
      AND (t.status <> $1 OR t.position <> v.ord - 1)
  `, status, ids)
	return err
}
