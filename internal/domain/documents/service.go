package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"opsflow/internal/platform/ids"
	"opsflow/internal/platform/storage"
)

// rootTarget moves documents out of any folder.
const rootTarget = "root"

type Service struct {
	store   StoreAPI
	objects storage.ObjectStore
	now     func() time.Time
}

func NewService(store StoreAPI, objects storage.ObjectStore) *Service {
	if objects == nil {
		objects = storage.Disabled{}
	}
	return &Service{store: store, objects: objects, now: time.Now}
}

func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	if !ids.Valid(id) {
		return nil, ErrDocumentNotFound
	}
	return s.store.Get(ctx, id)
}

// GetForEmployee hides documents that belong to another employee.
func (s *Service) GetForEmployee(ctx context.Context, employeeID, id string) (*Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.EmployeeID == nil || *doc.EmployeeID != employeeID {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	if filter.FolderID == rootTarget {
		filter.FolderID, filter.Unfiled = "", true
	}
	if filter.FolderID != "" && !ids.Valid(filter.FolderID) {
		return nil, ErrFolderNotFound
	}
	if filter.EmployeeID != "" {
		if err := s.checkRefs(ctx, "", filter.EmployeeID); err != nil {
			return nil, err
		}
	}
	return s.store.List(ctx, filter)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Document, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.URL == "" {
		return nil, ErrURLRequired
	}
	if in.Size < 0 {
		return nil, ErrSizeInvalid
	}
	if in.FolderID == rootTarget {
		in.FolderID = ""
	}
	if err := s.checkRefs(ctx, in.FolderID, in.EmployeeID); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, in)
}

// Upload streams the file to object storage and records it.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Document, error) {
	if in.Body == nil {
		return nil, ErrFileRequired
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if in.FolderID == rootTarget {
		in.FolderID = ""
	}
	if err := s.checkRefs(ctx, in.FolderID, in.EmployeeID); err != nil {
		return nil, err
	}
	key := storage.NewKey("documents", name, s.now())
	url, err := s.objects.Put(ctx, key, in.ContentType, in.Body, in.Size)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return nil, ErrUploadsDisabled
		}
		return nil, fmt.Errorf("upload document: %w", err)
	}
	doc, err := s.store.Create(ctx, CreateInput{
		Name:       name,
		URL:        url,
		StorageKey: key,
		Size:       in.Size,
		Type:       in.ContentType,
		FolderID:   in.FolderID,
		EmployeeID: in.EmployeeID,
	})
	if err != nil {
		storage.Discard(ctx, s.objects, key)
		return nil, err
	}
	return doc, nil
}

// DownloadURL prefers a presigned link for stored objects and falls back to the recorded URL.
func (s *Service) DownloadURL(ctx context.Context, doc *Document) string {
	if doc.StorageKey == "" {
		return doc.URL
	}
	url, err := s.objects.PresignGet(ctx, doc.StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrDisabled) {
			slog.Warn("document presign failed", "documentId", doc.ID, "err", err)
		}
		return doc.URL
	}
	return url
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Document, error) {
	if !ids.Valid(id) {
		return nil, ErrDocumentNotFound
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return nil, ErrNameRequired
		}
		in.Name = &trimmed
	}
	if in.FolderID.Set && !in.FolderID.Null {
		switch {
		case in.FolderID.V == "" || in.FolderID.V == rootTarget:
			in.FolderID.Null = true
		case !ids.Valid(in.FolderID.V):
			return nil, ErrFolderNotFound
		}
	}
	var updated *Document
	err := s.store.Transaction(ctx, func(tx StoreAPI) error {
		if in.FolderID.Set && !in.FolderID.Null {
			exists, err := tx.FolderExists(ctx, in.FolderID.V)
			if err != nil {
				return err
			}
			if !exists {
				return ErrFolderNotFound
			}
		}
		if err := tx.Update(ctx, id, in); err != nil {
			return err
		}
		var err error
		updated, err = tx.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return ErrDocumentNotFound
	}
	return s.store.Delete(ctx, id)
}

// Batch applies one action to many documents as a single statement.
func (s *Service) Batch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action != ActionDelete && action != ActionMove {
		return nil, ErrUnknownAction
	}
	if !ids.AllValid(req.DocumentIDs) {
		return nil, ErrDocumentIDsInvalid
	}
	docIDs := dedupe(req.DocumentIDs)

	if action == ActionDelete {
		count, err := s.store.DeleteMany(ctx, docIDs)
		if err != nil {
			return nil, err
		}
		return &BatchResult{Action: action, Count: count}, nil
	}

	target := strings.TrimSpace(req.TargetFolderID)
	if target == "" {
		return nil, ErrTargetRequired
	}
	var folderID *string
	if target != rootTarget {
		if !ids.Valid(target) {
			return nil, ErrTargetFolderNotFound
		}
		folderID = &target
	}
	var count int64
	err := s.store.Transaction(ctx, func(tx StoreAPI) error {
		if folderID != nil {
			exists, err := tx.FolderExists(ctx, *folderID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrTargetFolderNotFound
			}
		}
		var err error
		count, err = tx.MoveMany(ctx, docIDs, folderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BatchResult{Action: action, Count: count}, nil
}

func (s *Service) checkRefs(ctx context.Context, folderID, employeeID string) error {
	if folderID != "" {
		if !ids.Valid(folderID) {
			return ErrFolderNotFound
		}
		exists, err := s.store.FolderExists(ctx, folderID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrFolderNotFound
		}
	}
	if employeeID != "" {
		if !ids.Valid(employeeID) {
			return ErrEmployeeNotFound
		}
		exists, err := s.store.EmployeeExists(ctx, employeeID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrEmployeeNotFound
		}
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
