package folders

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsflow/internal/domain/apperr"
	"opsflow/internal/platform/ids"
	"opsflow/internal/platform/optional"
)

type memStore struct {
	folders       map[string]Folder
	failPathAfter int
	pathWrites    int
}

func newMemStore() *memStore {
	return &memStore{folders: map[string]Folder{}, failPathAfter: -1}
}

func (m *memStore) Transaction(_ context.Context, fn func(StoreAPI) error) error {
	snapshot := make(map[string]Folder, len(m.folders))
	for k, v := range m.folders {
		snapshot[k] = v
	}
	if err := fn(m); err != nil {
		m.folders = snapshot
		return err
	}
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*Folder, error) {
	f, ok := m.folders[id]
	if !ok {
		return nil, ErrFolderNotFound
	}
	return &f, nil
}

func (m *memStore) List(ctx context.Context, filter ListFilter) ([]Folder, error) {
	var out []Folder
	for _, f := range m.folders {
		switch {
		case filter.TopLevel && f.ParentID != nil:
			continue
		case filter.ParentID != "" && (f.ParentID == nil || *f.ParentID != filter.ParentID):
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *memStore) ListChildren(ctx context.Context, parentID string) ([]Folder, error) {
	return m.List(ctx, ListFilter{ParentID: parentID})
}

func (m *memStore) SiblingNameExists(_ context.Context, parentID *string, name, excludeID string) (bool, error) {
	for _, f := range m.folders {
		if f.ID != excludeID && sameParent(f.ParentID, parentID) && strings.EqualFold(f.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Create(_ context.Context, folder Folder) (*Folder, error) {
	folder.ID = ids.New()
	m.folders[folder.ID] = folder
	return &folder, nil
}

func (m *memStore) Update(_ context.Context, id string, changes Changes) error {
	f, ok := m.folders[id]
	if !ok {
		return ErrFolderNotFound
	}
	if changes.Name != nil {
		f.Name = *changes.Name
	}
	if changes.Description.Set {
		f.Description = changes.Description.V
	}
	if changes.ParentID.Set {
		f.ParentID = changes.ParentID.Ptr()
	}
	if changes.Path != nil {
		f.Path = *changes.Path
	}
	m.folders[id] = f
	return nil
}

func (m *memStore) UpdatePath(_ context.Context, id, path string) error {
	if m.failPathAfter >= 0 && m.pathWrites >= m.failPathAfter {
		return errors.New("connection reset")
	}
	m.pathWrites++
	f, ok := m.folders[id]
	if !ok {
		return ErrFolderNotFound
	}
	f.Path = path
	m.folders[id] = f
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.folders[id]; !ok {
		return ErrFolderNotFound
	}
	delete(m.folders, id)
	for childID, f := range m.folders {
		if f.ParentID != nil && *f.ParentID == id {
			_ = m.Delete(context.Background(), childID)
		}
	}
	return nil
}

// assertPathsConsistent checks that every stored path equals the joined names of its ancestors.
func assertPathsConsistent(t *testing.T, m *memStore) {
	t.Helper()
	for _, f := range m.folders {
		names := []string{f.Name}
		cur := f
		for cur.ParentID != nil {
			parent, ok := m.folders[*cur.ParentID]
			require.True(t, ok, "dangling parent for %s", f.Path)
			names = append([]string{parent.Name}, names...)
			cur = parent
		}
		assert.Equal(t, "/"+strings.Join(names, "/"), f.Path)
	}
}

func mustCreate(t *testing.T, svc *Service, name, parent string) *Folder {
	t.Helper()
	f, err := svc.Create(context.Background(), CreateInput{Name: name, ParentID: parent})
	require.NoError(t, err)
	return f
}

func TestCreatePaths(t *testing.T) {
	svc := NewService(newMemStore())

	hr := mustCreate(t, svc, "HR", "")
	assert.Equal(t, "/HR", hr.Path)
	assert.Nil(t, hr.ParentID)

	policies := mustCreate(t, svc, "  Policies ", hr.ID)
	assert.Equal(t, "/HR/Policies", policies.Path)
	require.NotNil(t, policies.ParentID)
	assert.Equal(t, hr.ID, *policies.ParentID)

	for _, parent := range []string{RootSentinel, "not-a-uuid", "3f1c2b9e-8a4d-1c6e-9b2a-1d5e7f8a9b0c"} {
		f := mustCreate(t, svc, "Top "+parent, parent)
		assert.Nil(t, f.ParentID, parent)
		assert.Equal(t, "/Top "+parent, f.Path)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := NewService(newMemStore())

	_, err := svc.Create(context.Background(), CreateInput{Name: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{Name: "a/b"})
	assert.ErrorIs(t, err, ErrNameInvalid)

	_, err = svc.Create(context.Background(), CreateInput{Name: strings.Repeat("x", 256)})
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Orphan", ParentID: ids.New()})
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateRejectsDuplicateSibling(t *testing.T) {
	svc := NewService(newMemStore())
	hr := mustCreate(t, svc, "HR", "")
	mustCreate(t, svc, "Contracts", hr.ID)

	_, err := svc.Create(context.Background(), CreateInput{Name: "contracts", ParentID: hr.ID})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Contracts"})
	assert.NoError(t, err, "same name under a different parent is allowed")
}

func TestRenameRewritesDescendants(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	a := mustCreate(t, svc, "A", "")
	b := mustCreate(t, svc, "B", a.ID)
	c := mustCreate(t, svc, "C", b.ID)

	renamed := "Archive"
	got, err := svc.Update(context.Background(), a.ID, UpdateInput{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "/Archive", got.Path)

	bAfter, _ := store.Get(context.Background(), b.ID)
	cAfter, _ := store.Get(context.Background(), c.ID)
	assert.Equal(t, "/Archive/B", bAfter.Path)
	assert.Equal(t, "/Archive/B/C", cAfter.Path)
	assertPathsConsistent(t, store)
}

func TestMoveRewritesSubtree(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	a := mustCreate(t, svc, "A", "")
	b := mustCreate(t, svc, "B", a.ID)
	mustCreate(t, svc, "C", b.ID)
	x := mustCreate(t, svc, "X", "")

	got, err := svc.Update(context.Background(), b.ID, UpdateInput{ParentID: optional.Of(x.ID)})
	require.NoError(t, err)
	assert.Equal(t, "/X/B", got.Path)
	assertPathsConsistent(t, store)

	got, err = svc.Update(context.Background(), b.ID, UpdateInput{ParentID: optional.Null[string]()})
	require.NoError(t, err)
	assert.Equal(t, "/B", got.Path)
	assert.Nil(t, got.ParentID)
	assertPathsConsistent(t, store)
}

func TestMoveIntoOwnSubtreeIsRejected(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	a := mustCreate(t, svc, "A", "")
	b := mustCreate(t, svc, "B", a.ID)
	c := mustCreate(t, svc, "C", b.ID)

	_, err := svc.Update(context.Background(), a.ID, UpdateInput{ParentID: optional.Of(c.ID)})
	assert.ErrorIs(t, err, ErrCycle)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Update(context.Background(), a.ID, UpdateInput{ParentID: optional.Of(a.ID)})
	assert.ErrorIs(t, err, ErrCycle)

	aAfter, _ := store.Get(context.Background(), a.ID)
	assert.Nil(t, aAfter.ParentID)
	assertPathsConsistent(t, store)
}

func TestMoveIntoDuplicateNameConflicts(t *testing.T) {
	svc := NewService(newMemStore())
	a := mustCreate(t, svc, "A", "")
	mustCreate(t, svc, "Reports", a.ID)
	reports := mustCreate(t, svc, "reports", "")

	_, err := svc.Update(context.Background(), reports.ID, UpdateInput{ParentID: optional.Of(a.ID)})
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestUpdateRollsBackWhenSubtreeRewriteFails(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	a := mustCreate(t, svc, "A", "")
	b := mustCreate(t, svc, "B", a.ID)
	mustCreate(t, svc, "C", b.ID)
	store.failPathAfter = 1

	renamed := "Z"
	_, err := svc.Update(context.Background(), a.ID, UpdateInput{Name: &renamed})
	require.Error(t, err)

	aAfter, _ := store.Get(context.Background(), a.ID)
	assert.Equal(t, "A", aAfter.Name)
	assertPathsConsistent(t, store)
}

func TestUpdateDescriptionOnly(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	a := mustCreate(t, svc, "A", "")

	got, err := svc.Update(context.Background(), a.ID, UpdateInput{Description: optional.Of("shared drive")})
	require.NoError(t, err)
	assert.Equal(t, "shared drive", got.Description)
	assert.Equal(t, "/A", got.Path)
	assert.Zero(t, store.pathWrites)
}

func TestInvalidIDsAreNotFound(t *testing.T) {
	svc := NewService(newMemStore())
	_, err := svc.Get(context.Background(), "1234")
	assert.ErrorIs(t, err, ErrFolderNotFound)
	_, err = svc.Update(context.Background(), "root", UpdateInput{})
	assert.ErrorIs(t, err, ErrFolderNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "nope"), ErrFolderNotFound)
}

func TestDeleteCascades(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	a := mustCreate(t, svc, "A", "")
	mustCreate(t, svc, "B", a.ID)
	other := mustCreate(t, svc, "Other", "")

	require.NoError(t, svc.Delete(context.Background(), a.ID))
	assert.Len(t, store.folders, 1)
	assert.Contains(t, store.folders, other.ID)
	assert.ErrorIs(t, svc.Delete(context.Background(), a.ID), ErrFolderNotFound)
}

func TestListScopes(t *testing.T) {
	svc := NewService(newMemStore())
	a := mustCreate(t, svc, "A", "")
	mustCreate(t, svc, "B", a.ID)
	mustCreate(t, svc, "C", "")

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "/A", all[0].Path)
	assert.Equal(t, "/A/B", all[1].Path)

	top, err := svc.List(context.Background(), RootSentinel)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	children, err := svc.List(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "B", children[0].Name)

	_, err = svc.List(context.Background(), ids.New())
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestRandomMovesKeepPathsConsistent(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	rng := rand.New(rand.NewSource(42))

	var all []string
	for i := 0; i < 25; i++ {
		parent := ""
		if len(all) > 0 && rng.Intn(3) > 0 {
			parent = all[rng.Intn(len(all))]
		}
		f := mustCreate(t, svc, "f"+string(rune('a'+i)), parent)
		all = append(all, f.ID)
	}

	for i := 0; i < 200; i++ {
		id := all[rng.Intn(len(all))]
		in := UpdateInput{}
		switch rng.Intn(3) {
		case 0:
			in.ParentID = optional.Of(all[rng.Intn(len(all))])
		case 1:
			in.ParentID = optional.Of(RootSentinel)
		default:
			name := "n" + string(rune('a'+rng.Intn(26))) + string(rune('a'+rng.Intn(26)))
			in.Name = &name
		}
		_, err := svc.Update(context.Background(), id, in)
		if err != nil {
			require.True(t, errors.Is(err, ErrCycle) || errors.Is(err, ErrNameTaken), err)
		}
		assertPathsConsistent(t, store)
	}
}
