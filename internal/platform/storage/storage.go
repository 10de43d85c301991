package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrDisabled = errors.New("object storage is not configured")

// ObjectStore writes uploaded bytes and issues short-lived download links.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a date-partitioned, collision-free object key under prefix.
func NewKey(prefix, filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("%s/%d/%02d/%02d/%s/%s", prefix, now.Year(), now.Month(), now.Day(), uuid.New(), name)
}

// Discard removes an object whose record could not be written. Failures are
// logged and the object is left for manual cleanup.
func Discard(ctx context.Context, store ObjectStore, key string) {
	if err := store.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.Warn("orphaned object not removed", "key", key, "err", err)
	}
}

// Disabled rejects every call; used when no bucket is configured.
type Disabled struct{}

func (Disabled) Put(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", ErrDisabled
}

func (Disabled) PresignGet(context.Context, string) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Delete(context.Context, string) error {
	return ErrDisabled
}
