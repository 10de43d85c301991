package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsflow/internal/domain/apperr"
	"opsflow/internal/platform/ids"
	"opsflow/internal/platform/optional"
	"opsflow/internal/platform/storage"
)

type memStore struct {
	docs      map[string]Document
	folders   map[string]bool
	employees map[string]bool
	batchOps  int
	createErr error
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]Document{}, folders: map[string]bool{}, employees: map[string]bool{}}
}

func (m *memStore) Transaction(_ context.Context, fn func(StoreAPI) error) error {
	snapshot := make(map[string]Document, len(m.docs))
	for k, v := range m.docs {
		snapshot[k] = v
	}
	if err := fn(m); err != nil {
		m.docs = snapshot
		return err
	}
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return &d, nil
}

func (m *memStore) List(_ context.Context, filter ListFilter) ([]Document, error) {
	var out []Document
	for _, d := range m.docs {
		if filter.Unfiled && d.FolderID != nil {
			continue
		}
		if filter.FolderID != "" && (d.FolderID == nil || *d.FolderID != filter.FolderID) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, in CreateInput) (*Document, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	d := Document{
		ID:         ids.New(),
		Name:       in.Name,
		URL:        in.URL,
		StorageKey: in.StorageKey,
		Size:       in.Size,
		Type:       in.Type,
	}
	if in.FolderID != "" {
		d.FolderID = &in.FolderID
	}
	if in.EmployeeID != "" {
		d.EmployeeID = &in.EmployeeID
	}
	m.docs[d.ID] = d
	return &d, nil
}

func (m *memStore) Update(_ context.Context, id string, in UpdateInput) error {
	d, ok := m.docs[id]
	if !ok {
		return ErrDocumentNotFound
	}
	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.FolderID.Set {
		d.FolderID = in.FolderID.Ptr()
	}
	m.docs[id] = d
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memStore) DeleteMany(_ context.Context, docIDs []string) (int64, error) {
	m.batchOps++
	var n int64
	for _, id := range docIDs {
		if _, ok := m.docs[id]; ok {
			delete(m.docs, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) MoveMany(_ context.Context, docIDs []string, folderID *string) (int64, error) {
	m.batchOps++
	var n int64
	for _, id := range docIDs {
		if d, ok := m.docs[id]; ok {
			d.FolderID = folderID
			m.docs[id] = d
			n++
		}
	}
	return n, nil
}

func (m *memStore) FolderExists(_ context.Context, id string) (bool, error) {
	return m.folders[id], nil
}

func (m *memStore) EmployeeExists(_ context.Context, id string) (bool, error) {
	return m.employees[id], nil
}

type fakeObjects struct {
	puts map[string]string
	err  error
}

func (f *fakeObjects) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, _ := io.ReadAll(body)
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[key] = string(data)
	return "https://files.test/" + key, nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://files.test/" + key + "?sig=1", nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	delete(f.puts, key)
	return nil
}

func seedDocs(t *testing.T, svc *Service, n int, folderID string) []string {
	t.Helper()
	var out []string
	for i := 0; i < n; i++ {
		d, err := svc.Create(context.Background(), CreateInput{Name: "doc", URL: "https://x.test/doc", FolderID: folderID})
		require.NoError(t, err)
		out = append(out, d.ID)
	}
	return out
}

func TestBatchMove(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	f1, f2 := ids.New(), ids.New()
	store.folders[f1], store.folders[f2] = true, true
	docIDs := seedDocs(t, svc, 3, f1)

	res, err := svc.Batch(context.Background(), BatchRequest{Action: "move", DocumentIDs: docIDs, TargetFolderID: f2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Count)
	assert.Equal(t, ActionMove, res.Action)
	for _, id := range docIDs {
		assert.Equal(t, f2, *store.docs[id].FolderID)
	}
	assert.Equal(t, 1, store.batchOps)
}

func TestBatchMoveToMissingFolderChangesNothing(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	f1 := ids.New()
	store.folders[f1] = true
	docIDs := seedDocs(t, svc, 2, f1)

	_, err := svc.Batch(context.Background(), BatchRequest{Action: ActionMove, DocumentIDs: docIDs, TargetFolderID: ids.New()})
	assert.ErrorIs(t, err, ErrTargetFolderNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	for _, id := range docIDs {
		assert.Equal(t, f1, *store.docs[id].FolderID)
	}
	assert.Zero(t, store.batchOps)
}

func TestBatchMoveToRootUnfiles(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	f1 := ids.New()
	store.folders[f1] = true
	docIDs := seedDocs(t, svc, 2, f1)

	res, err := svc.Batch(context.Background(), BatchRequest{Action: ActionMove, DocumentIDs: docIDs, TargetFolderID: "root"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Count)
	assert.Nil(t, store.docs[docIDs[0]].FolderID)
}

func TestBatchDeleteCountsOnlyExisting(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	docIDs := seedDocs(t, svc, 2, "")

	res, err := svc.Batch(context.Background(), BatchRequest{
		Action:      "DELETE",
		DocumentIDs: append(docIDs, ids.New(), docIDs[0]),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Count)
	assert.Empty(t, store.docs)
}

func TestBatchValidation(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	valid := []string{ids.New()}
	cases := map[string]struct {
		req  BatchRequest
		want error
	}{
		"unknown action": {BatchRequest{Action: "archive", DocumentIDs: valid}, ErrUnknownAction},
		"no ids":         {BatchRequest{Action: ActionDelete}, ErrDocumentIDsInvalid},
		"bad id":         {BatchRequest{Action: ActionDelete, DocumentIDs: []string{"1"}}, ErrDocumentIDsInvalid},
		"no target":      {BatchRequest{Action: ActionMove, DocumentIDs: valid}, ErrTargetRequired},
		"bad target":     {BatchRequest{Action: ActionMove, DocumentIDs: valid, TargetFolderID: "x"}, ErrTargetFolderNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Batch(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateChecksReferences(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), CreateInput{Name: "a", URL: "u", FolderID: ids.New()})
	assert.ErrorIs(t, err, ErrFolderNotFound)

	_, err = svc.Create(context.Background(), CreateInput{Name: "a", URL: "u", EmployeeID: ids.New()})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, err = svc.Create(context.Background(), CreateInput{Name: " ", URL: "u"})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(context.Background(), CreateInput{Name: "a"})
	assert.ErrorIs(t, err, ErrURLRequired)
}

func TestCreateInRootIsUnfiled(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &fakeObjects{})

	doc, err := svc.Create(context.Background(), CreateInput{Name: "a", URL: "u", FolderID: "root"})
	require.NoError(t, err)
	assert.Nil(t, doc.FolderID)

	doc, err = svc.Upload(context.Background(), UploadInput{Name: "b.txt", FolderID: "root", Body: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Nil(t, doc.FolderID)

	unfiled, err := svc.List(context.Background(), ListFilter{FolderID: "root"})
	require.NoError(t, err)
	assert.Len(t, unfiled, 2)
}

func TestListChecksEmployee(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	emp := ids.New()
	store.employees[emp] = true

	_, err := svc.List(context.Background(), ListFilter{EmployeeID: ids.New()})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, err = svc.List(context.Background(), ListFilter{EmployeeID: "not-a-uuid"})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, err = svc.List(context.Background(), ListFilter{EmployeeID: emp})
	assert.NoError(t, err)
}

func TestUpdateMovesBetweenFolders(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	f1 := ids.New()
	store.folders[f1] = true
	id := seedDocs(t, svc, 1, "")[0]

	got, err := svc.Update(context.Background(), id, UpdateInput{FolderID: optional.Of(f1)})
	require.NoError(t, err)
	assert.Equal(t, f1, *got.FolderID)

	got, err = svc.Update(context.Background(), id, UpdateInput{FolderID: optional.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)

	_, err = svc.Update(context.Background(), id, UpdateInput{FolderID: optional.Of(ids.New())})
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestUploadStoresObjectThenRecord(t *testing.T) {
	store := newMemStore()
	objects := &fakeObjects{}
	svc := NewService(store, objects)
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC) }

	doc, err := svc.Upload(context.Background(), UploadInput{
		Name:        "handbook.pdf",
		ContentType: "application/pdf",
		Size:        5,
		Body:        strings.NewReader("%PDF-"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.StorageKey, "documents/2026/02/03/"))
	assert.Equal(t, "https://files.test/"+doc.StorageKey, doc.URL)
	assert.Equal(t, "%PDF-", objects.puts[doc.StorageKey])
	assert.Equal(t, "https://files.test/"+doc.StorageKey+"?sig=1", svc.DownloadURL(context.Background(), doc))
}

func TestUploadWithoutStorage(t *testing.T) {
	svc := NewService(newMemStore(), storage.Disabled{})
	_, err := svc.Upload(context.Background(), UploadInput{Name: "a.txt", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrUploadsDisabled)

	objects := &fakeObjects{err: errors.New("bucket gone")}
	svc = NewService(newMemStore(), objects)
	_, err = svc.Upload(context.Background(), UploadInput{Name: "a.txt", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrValidation)
}

func TestUploadRemovesObjectWhenRecordFails(t *testing.T) {
	store := newMemStore()
	store.createErr = errors.New("connection reset")
	objects := &fakeObjects{}
	svc := NewService(store, objects)

	_, err := svc.Upload(context.Background(), UploadInput{Name: "a.txt", Size: 1, Body: strings.NewReader("x")})

	require.Error(t, err)
	assert.Empty(t, objects.puts)
	assert.Empty(t, store.docs)
}

func TestDownloadURLFallsBack(t *testing.T) {
	svc := NewService(newMemStore(), &fakeObjects{err: errors.New("offline")})
	doc := &Document{ID: "d", URL: "https://files.test/a", StorageKey: "a"}
	assert.Equal(t, "https://files.test/a", svc.DownloadURL(context.Background(), doc))

	doc.StorageKey = ""
	assert.Equal(t, "https://files.test/a", svc.DownloadURL(context.Background(), doc))
}

func TestGetForEmployee(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	emp := ids.New()
	store.employees[emp] = true
	doc, err := svc.Create(context.Background(), CreateInput{Name: "id.png", URL: "u", EmployeeID: emp})
	require.NoError(t, err)

	_, err = svc.GetForEmployee(context.Background(), emp, doc.ID)
	assert.NoError(t, err)
	_, err = svc.GetForEmployee(context.Background(), ids.New(), doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
