package licenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsflow/internal/domain/compliance"
	"opsflow/internal/platform/ids"
	"opsflow/internal/platform/optional"
	"opsflow/internal/platform/storage"
)

type Service struct {
	store   StoreAPI
	objects storage.ObjectStore
	policy  compliance.Policy
}

func NewService(store StoreAPI, objects storage.ObjectStore, policy compliance.Policy) *Service {
	if objects == nil {
		objects = storage.Disabled{}
	}
	return &Service{store: store, objects: objects, policy: policy}
}

// decorate replaces the stored status with the one derived for today.
func (s *Service) decorate(l *License, today time.Time) {
	l.Status = DeriveStatus(l.ExpiryDate, l.RenewalPending, today, s.policy.Threshold())
	l.DaysUntilExpiry = compliance.DaysLeft(l.ExpiryDate, today)
}

func (s *Service) Get(ctx context.Context, id string) (*License, error) {
	if !ids.Valid(id) {
		return nil, ErrLicenseNotFound
	}
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate(l, s.policy.Today())
	return l, nil
}

func (s *Service) GetForEmployee(ctx context.Context, employeeID, id string) (*License, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.EmployeeID != employeeID {
		return nil, ErrLicenseNotFound
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]License, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, ErrStatusInvalid
	}
	if filter.EmployeeID != "" {
		if err := s.requireEmployee(ctx, filter.EmployeeID); err != nil {
			return nil, err
		}
	}
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	today := s.policy.Today()
	out := make([]License, 0, len(items))
	for _, l := range items {
		s.decorate(&l, today)
		if filter.Status == "" || l.Status == filter.Status {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, employeeID string, in CreateInput) (*License, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if datesOutOfOrder(in.IssueDate, in.ExpiryDate) {
		return nil, ErrDatesOutOfOrder
	}
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	today := s.policy.Today()
	status := DeriveStatus(in.ExpiryDate, in.RenewalPending, today, s.policy.Threshold())
	l, err := s.store.Create(ctx, employeeID, in, status)
	if err != nil {
		return nil, err
	}
	s.decorate(l, today)
	return l, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*License, error) {
	if !ids.Valid(id) {
		return nil, ErrLicenseNotFound
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return nil, ErrNameRequired
		}
		in.Name = &trimmed
	}
	return s.apply(ctx, id, in)
}

// Renew records a renewed license: new dates, optional replacement document,
// renewal flag cleared.
func (s *Service) Renew(ctx context.Context, id string, in RenewInput) (*License, error) {
	if !ids.Valid(id) {
		return nil, ErrLicenseNotFound
	}
	update := UpdateInput{
		ExpiryDate:     optional.Of(compliance.Day(in.ExpiryDate)),
		RenewalPending: new(bool),
	}
	if in.IssueDate != nil {
		update.IssueDate = optional.Of(compliance.Day(*in.IssueDate))
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	issue := current.IssueDate
	if update.IssueDate.Set {
		issue = update.IssueDate.Ptr()
	}
	if datesOutOfOrder(issue, update.ExpiryDate.Ptr()) {
		return nil, ErrDatesOutOfOrder
	}
	if in.Document == nil {
		return s.apply(ctx, id, update)
	}

	key := storage.NewKey("licenses/"+id, in.Document.Name, s.policy.Today())
	url, err := s.objects.Put(ctx, key, in.Document.ContentType, in.Document.Body, in.Document.Size)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return nil, ErrUploadsDisabled
		}
		return nil, fmt.Errorf("upload renewal document: %w", err)
	}
	update.DocumentURL = optional.Of(url)
	renewed, err := s.apply(ctx, id, update)
	if err != nil {
		storage.Discard(ctx, s.objects, key)
		return nil, err
	}
	return renewed, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return ErrLicenseNotFound
	}
	return s.store.Delete(ctx, id)
}

// RefreshStatuses persists the derived status of every license whose stored value is stale.
func (s *Service) RefreshStatuses(ctx context.Context) (int, error) {
	items, err := s.store.List(ctx, ListFilter{})
	if err != nil {
		return 0, err
	}
	today := s.policy.Today()
	changed := 0
	for _, l := range items {
		status := DeriveStatus(l.ExpiryDate, l.RenewalPending, today, s.policy.Threshold())
		if status == l.Status {
			continue
		}
		if err := s.store.SetStatus(ctx, l.ID, status); err != nil {
			if errors.Is(err, ErrLicenseNotFound) {
				continue
			}
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func (s *Service) apply(ctx context.Context, id string, in UpdateInput) (*License, error) {
	today := s.policy.Today()
	var updated *License
	err := s.store.Transaction(ctx, func(tx StoreAPI) error {
		current, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		issue, expiry, pending := current.IssueDate, current.ExpiryDate, current.RenewalPending
		if in.IssueDate.Set {
			issue = in.IssueDate.Ptr()
		}
		if in.ExpiryDate.Set {
			expiry = in.ExpiryDate.Ptr()
		}
		if in.RenewalPending != nil {
			pending = *in.RenewalPending
		}
		if datesOutOfOrder(issue, expiry) {
			return ErrDatesOutOfOrder
		}
		status := DeriveStatus(expiry, pending, today, s.policy.Threshold())
		if err := tx.Update(ctx, id, in, status); err != nil {
			return err
		}
		updated, err = tx.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.decorate(updated, today)
	return updated, nil
}

func (s *Service) requireEmployee(ctx context.Context, employeeID string) error {
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
	return nil
}

func datesOutOfOrder(issue, expiry *time.Time) bool {
	return issue != nil && expiry != nil && compliance.Day(*expiry).Before(compliance.Day(*issue))
}
