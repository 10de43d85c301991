package licenses

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
	"opsflow/internal/domain/compliance"
	"opsflow/internal/platform/ids"
	"opsflow/internal/platform/optional"
	"opsflow/internal/platform/storage"
)

var today = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := today.AddDate(0, 0, offset)
	return &d
}

type memStore struct {
	licenses  map[string]License
	employees map[string]bool
	statusSet map[string]string
	updateErr error
}

func newMemStore(employeeIDs ...string) *memStore {
	m := &memStore{licenses: map[string]License{}, employees: map[string]bool{}, statusSet: map[string]string{}}
	for _, id := range employeeIDs {
		m.employees[id] = true
	}
	return m
}

func (m *memStore) Transaction(_ context.Context, fn func(StoreAPI) error) error {
	snapshot := make(map[string]License, len(m.licenses))
	for k, v := range m.licenses {
		snapshot[k] = v
	}
	if err := fn(m); err != nil {
		m.licenses = snapshot
		return err
	}
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*License, error) {
	l, ok := m.licenses[id]
	if !ok {
		return nil, ErrLicenseNotFound
	}
	return &l, nil
}

func (m *memStore) List(_ context.Context, filter ListFilter) ([]License, error) {
	var out []License
	for _, l := range m.licenses {
		if filter.EmployeeID == "" || l.EmployeeID == filter.EmployeeID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, employeeID string, in CreateInput, status string) (*License, error) {
	l := License{
		ID:             ids.New(),
		EmployeeID:     employeeID,
		Name:           in.Name,
		IssueDate:      in.IssueDate,
		ExpiryDate:     in.ExpiryDate,
		DocumentURL:    in.DocumentURL,
		RenewalPending: in.RenewalPending,
		Status:         status,
	}
	m.licenses[l.ID] = l
	return &l, nil
}

func (m *memStore) Update(_ context.Context, id string, in UpdateInput, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	l, ok := m.licenses[id]
	if !ok {
		return ErrLicenseNotFound
	}
	if in.Name != nil {
		l.Name = *in.Name
	}
	if in.IssueDate.Set {
		l.IssueDate = in.IssueDate.Ptr()
	}
	if in.ExpiryDate.Set {
		l.ExpiryDate = in.ExpiryDate.Ptr()
	}
	if in.DocumentURL.Set {
		l.DocumentURL = in.DocumentURL.V
	}
	if in.RenewalPending != nil {
		l.RenewalPending = *in.RenewalPending
	}
	l.Status = status
	m.licenses[id] = l
	return nil
}

func (m *memStore) SetStatus(_ context.Context, id, status string) error {
	l, ok := m.licenses[id]
	if !ok {
		return ErrLicenseNotFound
	}
	l.Status = status
	m.licenses[id] = l
	m.statusSet[id] = status
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.licenses[id]; !ok {
		return ErrLicenseNotFound
	}
	delete(m.licenses, id)
	return nil
}

func (m *memStore) EmployeeExists(_ context.Context, id string) (bool, error) {
	return m.employees[id], nil
}

type recordingObjects struct {
	keys []string
}

func (r *recordingObjects) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	r.keys = append(r.keys, key)
	return "https://files.test/" + key, nil
}

func (r *recordingObjects) PresignGet(context.Context, string) (string, error) {
	return "", storage.ErrDisabled
}

func (r *recordingObjects) Delete(_ context.Context, key string) error {
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return nil
}

func newService(store StoreAPI, objects storage.ObjectStore) *Service {
	return NewService(store, objects, compliance.Policy{ThresholdDays: 30, Now: func() time.Time { return today.Add(15 * time.Hour) }})
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name    string
		expiry  *time.Time
		pending bool
		want    string
	}{
		{"no expiry", nil, false, compliance.StatusValid},
		{"no expiry pending", nil, true, compliance.StatusRenewalPending},
		{"expired yesterday", day(-1), false, compliance.StatusExpired},
		{"expired but pending", day(-1), true, compliance.StatusExpired},
		{"expires today", day(0), false, compliance.StatusExpiringSoon},
		{"expires in 30", day(30), false, compliance.StatusExpiringSoon},
		{"expires in 31", day(31), false, compliance.StatusValid},
		{"soon but pending", day(5), true, compliance.StatusRenewalPending},
		{"valid but pending", day(90), true, compliance.StatusRenewalPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.expiry, tc.pending, today, 30))
		})
	}
}

func TestCreateDerivesStatus(t *testing.T) {
	emp := ids.New()
	svc := newService(newMemStore(emp), nil)

	l, err := svc.Create(context.Background(), emp, CreateInput{Name: " Forklift ", ExpiryDate: day(10)})
	require.NoError(t, err)
	assert.Equal(t, "Forklift", l.Name)
	assert.Equal(t, compliance.StatusExpiringSoon, l.Status)
	require.NotNil(t, l.DaysUntilExpiry)
	assert.Equal(t, 10, *l.DaysUntilExpiry)
}

func TestCreateValidation(t *testing.T) {
	emp := ids.New()
	svc := newService(newMemStore(emp), nil)

	_, err := svc.Create(context.Background(), emp, CreateInput{Name: ""})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(context.Background(), emp, CreateInput{Name: "A", IssueDate: day(5), ExpiryDate: day(1)})
	assert.ErrorIs(t, err, ErrDatesOutOfOrder)

	_, err = svc.Create(context.Background(), ids.New(), CreateInput{Name: "A"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRenewClearsPendingAndUploads(t *testing.T) {
	emp := ids.New()
	store := newMemStore(emp)
	objects := &recordingObjects{}
	svc := newService(store, objects)
	l, err := svc.Create(context.Background(), emp, CreateInput{Name: "First Aid", ExpiryDate: day(3), RenewalPending: true})
	require.NoError(t, err)
	assert.Equal(t, compliance.StatusRenewalPending, l.Status)

	renewed, err := svc.Renew(context.Background(), l.ID, RenewInput{
		ExpiryDate: *day(365),
		IssueDate:  day(0),
		Document:   &File{Name: "cert.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")},
	})
	require.NoError(t, err)
	assert.False(t, renewed.RenewalPending)
	assert.Equal(t, compliance.StatusValid, renewed.Status)
	assert.Equal(t, compliance.StatusValid, store.licenses[l.ID].Status)
	require.Len(t, objects.keys, 1)
	assert.True(t, strings.HasPrefix(objects.keys[0], "licenses/"+l.ID+"/"))
	assert.Equal(t, "https://files.test/"+objects.keys[0], renewed.DocumentURL)
}

func TestRenewRejectsExpiryBeforeIssue(t *testing.T) {
	emp := ids.New()
	svc := newService(newMemStore(emp), nil)
	l, err := svc.Create(context.Background(), emp, CreateInput{Name: "A", IssueDate: day(0), ExpiryDate: day(10)})
	require.NoError(t, err)

	_, err = svc.Renew(context.Background(), l.ID, RenewInput{ExpiryDate: *day(-10)})
	assert.ErrorIs(t, err, ErrDatesOutOfOrder)
}

func TestRejectedRenewalStoresNoDocument(t *testing.T) {
	emp := ids.New()
	objects := &recordingObjects{}
	svc := newService(newMemStore(emp), objects)
	l, err := svc.Create(context.Background(), emp, CreateInput{Name: "A", IssueDate: day(0), ExpiryDate: day(10)})
	require.NoError(t, err)

	_, err = svc.Renew(context.Background(), l.ID, RenewInput{
		ExpiryDate: *day(-10),
		Document:   &File{Name: "cert.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")},
	})

	assert.ErrorIs(t, err, ErrDatesOutOfOrder)
	assert.Empty(t, objects.keys)
}

func TestFailedRenewalRemovesUploadedDocument(t *testing.T) {
	emp := ids.New()
	store := newMemStore(emp)
	objects := &recordingObjects{}
	svc := newService(store, objects)
	l, err := svc.Create(context.Background(), emp, CreateInput{Name: "A", IssueDate: day(0), ExpiryDate: day(10)})
	require.NoError(t, err)

	store.updateErr = errors.New("connection reset")
	_, err = svc.Renew(context.Background(), l.ID, RenewInput{
		ExpiryDate: *day(400),
		Document:   &File{Name: "cert.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")},
	})

	require.Error(t, err)
	assert.Empty(t, objects.keys)
}

func TestRenewWithoutStorage(t *testing.T) {
	emp := ids.New()
	svc := newService(newMemStore(emp), nil)
	l, err := svc.Create(context.Background(), emp, CreateInput{Name: "A"})
	require.NoError(t, err)

	_, err = svc.Renew(context.Background(), l.ID, RenewInput{ExpiryDate: *day(10), Document: &File{Name: "x", Body: strings.NewReader("x")}})
	assert.ErrorIs(t, err, ErrUploadsDisabled)

	_, err = svc.Renew(context.Background(), ids.New(), RenewInput{ExpiryDate: *day(10)})
	assert.ErrorIs(t, err, ErrLicenseNotFound)
}

func TestUpdateRecomputesStatus(t *testing.T) {
	emp := ids.New()
	store := newMemStore(emp)
	svc := newService(store, nil)
	l, err := svc.Create(context.Background(), emp, CreateInput{Name: "A", ExpiryDate: day(100)})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), l.ID, UpdateInput{ExpiryDate: optional.Of(*day(-2))})
	require.NoError(t, err)
	assert.Equal(t, compliance.StatusExpired, got.Status)
	assert.Equal(t, compliance.StatusExpired, store.licenses[l.ID].Status)

	got, err = svc.Update(context.Background(), l.ID, UpdateInput{ExpiryDate: optional.Null[time.Time]()})
	require.NoError(t, err)
	assert.Equal(t, compliance.StatusValid, got.Status)
	assert.Nil(t, got.DaysUntilExpiry)
}

func TestListFiltersByDerivedStatus(t *testing.T) {
	emp := ids.New()
	store := newMemStore(emp)
	svc := newService(store, nil)
	for _, offset := range []int{-5, 5, 50} {
		_, err := svc.Create(context.Background(), emp, CreateInput{Name: "L", ExpiryDate: day(offset)})
		require.NoError(t, err)
	}

	expired, err := svc.List(context.Background(), ListFilter{Status: compliance.StatusExpired})
	require.NoError(t, err)
	assert.Len(t, expired, 1)

	all, err := svc.List(context.Background(), ListFilter{EmployeeID: emp})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.List(context.Background(), ListFilter{Status: "Lapsed"})
	assert.ErrorIs(t, err, ErrStatusInvalid)
}

func TestRefreshStatuses(t *testing.T) {
	emp := ids.New()
	store := newMemStore(emp)
	svc := newService(store, nil)
	stale, err := svc.Create(context.Background(), emp, CreateInput{Name: "stale", ExpiryDate: day(-1)})
	require.NoError(t, err)
	fresh, err := svc.Create(context.Background(), emp, CreateInput{Name: "fresh", ExpiryDate: day(100)})
	require.NoError(t, err)
	l := store.licenses[stale.ID]
	l.Status = compliance.StatusValid
	store.licenses[stale.ID] = l

	changed, err := svc.RefreshStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, compliance.StatusExpired, store.statusSet[stale.ID])
	assert.NotContains(t, store.statusSet, fresh.ID)
}

func TestGetForEmployeeHidesOthers(t *testing.T) {
	emp, other := ids.New(), ids.New()
	svc := newService(newMemStore(emp, other), nil)
	l, err := svc.Create(context.Background(), emp, CreateInput{Name: "A"})
	require.NoError(t, err)

	_, err = svc.GetForEmployee(context.Background(), other, l.ID)
	assert.ErrorIs(t, err, ErrLicenseNotFound)
	got, err := svc.GetForEmployee(context.Background(), emp, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)
}
