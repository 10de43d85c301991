package employees

import (
	"context"
	"net/mail"
	"slices"
	"strings"

	"opsflow/internal/platform/ids"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id string) (*Employee, error) {
	if !ids.Valid(id) {
		return nil, ErrEmployeeNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Employee, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, ErrStatusInvalid
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Employee, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Position = strings.TrimSpace(in.Position)
	in.Department = strings.TrimSpace(in.Department)
	if in.Status == "" {
		in.Status = StatusActive
	}
	if in.FirstName == "" {
		return nil, ErrFirstNameMissing
	}
	if in.LastName == "" {
		return nil, ErrLastNameMissing
	}
	if !validEmail(in.Email) {
		return nil, ErrEmailInvalid
	}
	if !ValidStatus(in.Status) {
		return nil, ErrStatusInvalid
	}
	return s.store.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Employee, error) {
	if !ids.Valid(id) {
		return nil, ErrEmployeeNotFound
	}
	if in.FirstName != nil {
		trimmed := strings.TrimSpace(*in.FirstName)
		if trimmed == "" {
			return nil, ErrFirstNameMissing
		}
		in.FirstName = &trimmed
	}
	if in.LastName != nil {
		trimmed := strings.TrimSpace(*in.LastName)
		if trimmed == "" {
			return nil, ErrLastNameMissing
		}
		in.LastName = &trimmed
	}
	if in.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*in.Email))
		if !validEmail(normalized) {
			return nil, ErrEmailInvalid
		}
		in.Email = &normalized
	}
	if in.Status != nil && !ValidStatus(*in.Status) {
		return nil, ErrStatusInvalid
	}
	if err := s.store.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return ErrEmployeeNotFound
	}
	return s.store.Delete(ctx, id)
}

func ValidStatus(status string) bool {
	return slices.Contains(Statuses, status)
}

func validEmail(value string) bool {
	if value == "" {
		return false
	}
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}
