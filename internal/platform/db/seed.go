package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
)

// SeedFolders creates any missing top-level folders. Existing folders are
// matched by case-insensitive name and left untouched.
func SeedFolders(ctx context.Context, conn Conn, names []string) error {
	created := 0
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		ok, err := ensureRootFolder(ctx, conn, name)
		if err != nil {
			return fmt.Errorf("seed folder %q: %w", name, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		slog.Info("seeded folders", "created", created)
	}
	return nil
}

func ensureRootFolder(ctx context.Context, conn Conn, name string) (bool, error) {
	var id string
	err := conn.QueryRow(ctx,
		"SELECT id FROM folders WHERE parent_id IS NULL AND lower(name) = lower($1)", name).Scan(&id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	tag, err := conn.Exec(ctx, `
    INSERT INTO folders (name, path) VALUES ($1, $2)
    ON CONFLICT DO NOTHING
  `, name, "/"+name)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
