package documents

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

const documentColumns = `id, folder_id::text, employee_id::text, name, url, COALESCE(storage_key, ''),
           size, COALESCE(type, ''), uploaded_at, updated_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(
		&d.ID,
		&d.FolderID,
		&d.EmployeeID,
		&d.Name,
		&d.URL,
		&d.StorageKey,
		&d.Size,
		&d.Type,
		&d.UploadedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	d, err := scanDocument(s.DB.QueryRow(ctx, `
    SELECT `+documentColumns+`
    FROM document_files
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	var conds []string
	var args []any
	switch {
	case filter.Unfiled:
		conds = append(conds, "folder_id IS NULL")
	case filter.FolderID != "":
		args = append(args, filter.FolderID)
		conds = append(conds, fmt.Sprintf("folder_id = $%d", len(args)))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conds = append(conds, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)
	rows, err := s.DB.Query(ctx, fmt.Sprintf(`
    SELECT `+documentColumns+`
    FROM document_files
    %s
    ORDER BY uploaded_at DESC, id
    LIMIT $%d OFFSET $%d
  `, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, in CreateInput) (*Document, error) {
	d, err := scanDocument(s.DB.QueryRow(ctx, `
    INSERT INTO document_files (folder_id, employee_id, name, url, storage_key, size, type)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING `+documentColumns,
		db.NullIfEmpty(in.FolderID), db.NullIfEmpty(in.EmployeeID), in.Name, in.URL,
		db.NullIfEmpty(in.StorageKey), in.Size, db.NullIfEmpty(in.Type)))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			if strings.Contains(db.ConstraintName(err), "employee") {
				return nil, ErrEmployeeNotFound
			}
			return nil, ErrFolderNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *Store) Update(ctx context.Context, id string, in UpdateInput) error {
	patch := db.NewPatch().Touch("updated_at")
	db.SetPtr(patch, "name", in.Name)
	db.SetText(patch, "type", in.Type)
	db.SetOptional(patch, "folder_id", in.FolderID)
	if patch.Empty() {
		_, err := s.Get(ctx, id)
		return err
	}
	sql, args, err := patch.Build("document_files", db.Eq("id", id))
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrFolderNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM document_files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *Store) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	tag, err := s.DB.Exec(ctx, `DELETE FROM document_files WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) MoveMany(ctx context.Context, ids []string, folderID *string) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE document_files
    SET folder_id = $1, updated_at = now()
    WHERE id = ANY($2::uuid[])
  `, folderID, ids)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, ErrTargetFolderNotFound
		}
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FolderExists takes a share lock so the folder cannot be deleted before the caller commits.
func (s *Store) FolderExists(ctx context.Context, id string) (bool, error) {
	var found string
	err := s.DB.QueryRow(ctx, `SELECT id::text FROM folders WHERE id = $1 FOR SHARE`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) EmployeeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
