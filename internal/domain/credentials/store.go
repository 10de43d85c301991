package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"opsflow/internal/platform/crypto"
	"opsflow/internal/platform/db"
)

// Store keeps passwords sealed with the data key; plaintext never reaches SQL.
type Store struct {
	DB     db.Conn
	Crypto *crypto.Service
}

func NewStore(conn db.Conn, cryptoSvc *crypto.Service) *Store {
	return &Store{DB: conn, Crypto: cryptoSvc}
}

const credentialColumns = `id, name, COALESCE(username, ''), password_enc,
           COALESCE(url, ''), category, COALESCE(notes, ''), created_at, updated_at`

func (s *Store) scan(row pgx.Row) (Credential, error) {
	var c Credential
	var sealed []byte
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Username,
		&sealed,
		&c.URL,
		&c.Category,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return c, err
	}
	plain, err := s.Crypto.DecryptString(sealed)
	if err != nil {
		return c, fmt.Errorf("decrypt credential %s: %w", c.ID, err)
	}
	c.Password = plain
	return c, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Credential, error) {
	c, err := s.scan(s.DB.QueryRow(ctx, `
    SELECT `+credentialColumns+`
    FROM credentials
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Credential, error) {
	var conds []string
	var args []any
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("lower(category) = lower($%d)", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR username ILIKE $%d OR url ILIKE $%d)", n, n, n))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+credentialColumns+`
    FROM credentials
    `+where+`
    ORDER BY lower(name), id
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Credential
	for rows.Next() {
		c, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, in CreateInput) (*Credential, error) {
	sealed, err := s.Crypto.EncryptString(in.Password)
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}
	c, err := s.scan(s.DB.QueryRow(ctx, `
    INSERT INTO credentials (name, username, password_enc, url, category, notes)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+credentialColumns,
		in.Name, db.NullIfEmpty(in.Username), sealed, db.NullIfEmpty(in.URL), in.Category, db.NullIfEmpty(in.Notes)))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) Update(ctx context.Context, id string, in UpdateInput) error {
	patch := db.NewPatch().Touch("updated_at")
	db.SetPtr(patch, "name", in.Name)
	db.SetText(patch, "username", in.Username)
	db.SetText(patch, "url", in.URL)
	db.SetPtr(patch, "category", in.Category)
	db.SetText(patch, "notes", in.Notes)
	if in.Password.Set {
		sealed, err := s.Crypto.EncryptString(in.Password.V)
		if err != nil {
			return fmt.Errorf("encrypt password: %w", err)
		}
		patch.Set("password_enc", sealed)
	}
	if patch.Empty() {
		_, err := s.Get(ctx, id)
		return err
	}
	sql, args, err := patch.Build("credentials", db.Eq("id", id))
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

func (s *Store) CategoryCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT category, COUNT(1)
    FROM credentials
    GROUP BY category
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		out[name] += count
	}
	return out, rows.Err()
}
