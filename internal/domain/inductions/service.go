package inductions

import (
	"context"
	"errors"
	"strings"
	"time"

	"opsflow/internal/domain/compliance"
	"opsflow/internal/platform/ids"
)

type Service struct {
	store  StoreAPI
	policy compliance.Policy
}

func NewService(store StoreAPI, policy compliance.Policy) *Service {
	return &Service{store: store, policy: policy}
}

func (s *Service) decorate(in *Induction, today time.Time) {
	in.Status = DeriveStatus(in.StoredStatus, in.ExpiryDate, today, s.policy.Threshold())
	in.DaysUntilExpiry = compliance.DaysLeft(in.ExpiryDate, today)
}

func (s *Service) Get(ctx context.Context, id string) (*Induction, error) {
	if !ids.Valid(id) {
		return nil, ErrInductionNotFound
	}
	in, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate(in, s.policy.Today())
	return in, nil
}

func (s *Service) GetForEmployee(ctx context.Context, employeeID, id string) (*Induction, error) {
	in, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.EmployeeID != employeeID {
		return nil, ErrInductionNotFound
	}
	return in, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Induction, error) {
	if filter.Status != "" && !ValidFilterStatus(filter.Status) {
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
	out := make([]Induction, 0, len(items))
	for _, in := range items {
		s.decorate(&in, today)
		if filter.Status == "" || in.Status == filter.Status {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, employeeID string, in CreateInput) (*Induction, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Provider = strings.TrimSpace(in.Provider)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !ValidWorkflowStatus(in.Status) {
		return nil, ErrStatusInvalid
	}
	if datesOutOfOrder(in.CompletionDate, in.ExpiryDate) {
		return nil, ErrDatesOutOfOrder
	}
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, employeeID, in)
	if err != nil {
		return nil, err
	}
	s.decorate(created, s.policy.Today())
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Induction, error) {
	if !ids.Valid(id) {
		return nil, ErrInductionNotFound
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return nil, ErrNameRequired
		}
		in.Name = &trimmed
	}
	if in.Status != nil && !ValidWorkflowStatus(*in.Status) {
		return nil, ErrStatusInvalid
	}
	var updated *Induction
	err := s.store.Transaction(ctx, func(tx StoreAPI) error {
		current, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		completion, expiry := current.CompletionDate, current.ExpiryDate
		if in.CompletionDate.Set {
			completion = in.CompletionDate.Ptr()
		}
		if in.ExpiryDate.Set {
			expiry = in.ExpiryDate.Ptr()
		}
		if datesOutOfOrder(completion, expiry) {
			return ErrDatesOutOfOrder
		}
		if err := tx.Update(ctx, id, in); err != nil {
			return err
		}
		updated, err = tx.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.decorate(updated, s.policy.Today())
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return ErrInductionNotFound
	}
	return s.store.Delete(ctx, id)
}

// RefreshStatuses writes back Expired (and its reversal to Completed) once the
// date says so. Expiring Soon stays derived.
func (s *Service) RefreshStatuses(ctx context.Context) (int, error) {
	items, err := s.store.List(ctx, ListFilter{})
	if err != nil {
		return 0, err
	}
	today := s.policy.Today()
	changed := 0
	for _, in := range items {
		status := DeriveStatus(in.StoredStatus, in.ExpiryDate, today, s.policy.Threshold())
		if status == in.StoredStatus || !persistable(status) {
			continue
		}
		if err := s.store.SetStatus(ctx, in.ID, status); err != nil {
			if errors.Is(err, ErrInductionNotFound) {
				continue
			}
			return changed, err
		}
		changed++
	}
	return changed, nil
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

func datesOutOfOrder(start, expiry *time.Time) bool {
	return start != nil && expiry != nil && compliance.Day(*expiry).Before(compliance.Day(*start))
}
