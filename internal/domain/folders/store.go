package folders

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

const folderColumns = `id, name, COALESCE(description, ''), parent_id::text, path, created_at, updated_at`

func scanFolder(row pgx.Row) (Folder, error) {
	var f Folder
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.ParentID, &f.Path, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func collectFolders(rows pgx.Rows) ([]Folder, error) {
	defer rows.Close()
	var out []Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*Folder, error) {
	f, err := scanFolder(s.DB.QueryRow(ctx, `
    SELECT `+folderColumns+`
    FROM folders
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFolderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Folder, error) {
	switch {
	case filter.TopLevel:
		rows, err := s.DB.Query(ctx, `
      SELECT `+folderColumns+`
      FROM folders
      WHERE parent_id IS NULL
      ORDER BY path
    `)
		if err != nil {
			return nil, err
		}
		return collectFolders(rows)
	case filter.ParentID != "":
		return s.ListChildren(ctx, filter.ParentID)
	default:
		rows, err := s.DB.Query(ctx, `
      SELECT `+folderColumns+`
      FROM folders
      ORDER BY path
    `)
		if err != nil {
			return nil, err
		}
		return collectFolders(rows)
	}
}

func (s *Store) ListChildren(ctx context.Context, parentID string) ([]Folder, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+folderColumns+`
    FROM folders
    WHERE parent_id = $1
    ORDER BY path
  `, parentID)
	if err != nil {
		return nil, err
	}
	return collectFolders(rows)
}

func (s *Store) SiblingNameExists(ctx context.Context, parentID *string, name, excludeID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1
      FROM folders
      WHERE parent_id IS NOT DISTINCT FROM $1::uuid
        AND lower(name) = lower($2)
        AND ($3 = '' OR id::text <> $3)
    )
  `, parentID, name, excludeID).Scan(&exists)
	return exists, err
}

func (s *Store) Create(ctx context.Context, folder Folder) (*Folder, error) {
	f, err := scanFolder(s.DB.QueryRow(ctx, `
    INSERT INTO folders (name, description, parent_id, path)
    VALUES ($1,$2,$3,$4)
    RETURNING `+folderColumns,
		folder.Name, db.NullIfEmpty(folder.Description), folder.ParentID, folder.Path))
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, ErrNameTaken
		case db.IsForeignKeyViolation(err):
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *Store) Update(ctx context.Context, id string, changes Changes) error {
	patch := db.NewPatch().Touch("updated_at")
	db.SetPtr(patch, "name", changes.Name)
	db.SetText(patch, "description", changes.Description)
	db.SetOptional(patch, "parent_id", changes.ParentID)
	db.SetPtr(patch, "path", changes.Path)
	if patch.Empty() {
		_, err := s.Get(ctx, id)
		return err
	}
	sql, args, err := patch.Build("folders", db.Eq("id", id))
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return ErrNameTaken
		case db.IsForeignKeyViolation(err):
			return ErrParentNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFolderNotFound
	}
	return nil
}

func (s *Store) UpdatePath(ctx context.Context, id, path string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE folders
    SET path = $1, updated_at = now()
    WHERE id = $2
  `, path, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFolderNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFolderNotFound
	}
	return nil
}
