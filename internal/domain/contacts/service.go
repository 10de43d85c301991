package contacts

import (
	"context"
	"strings"

	"opsflow/internal/platform/ids"
)

// Service keeps at most one primary contact per employee. Every write locks
// the employee row first so concurrent writers for the same employee queue up.
type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, employeeID string) ([]Contact, error) {
	if !ids.Valid(employeeID) {
		return nil, ErrEmployeeNotFound
	}
	exists, err := s.store.EmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrEmployeeNotFound
	}
	return s.store.List(ctx, employeeID)
}

func (s *Service) Get(ctx context.Context, employeeID, id string) (*Contact, error) {
	if !ids.Valid(employeeID) {
		return nil, ErrEmployeeNotFound
	}
	if !ids.Valid(id) {
		return nil, ErrContactNotFound
	}
	return s.store.Get(ctx, employeeID, id)
}

func (s *Service) Create(ctx context.Context, employeeID string, in CreateInput) (*Contact, error) {
	if !ids.Valid(employeeID) {
		return nil, ErrEmployeeNotFound
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.Relationship = strings.TrimSpace(in.Relationship)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
	if in.FullName == "" {
		return nil, ErrFullNameRequired
	}
	if in.Relationship == "" {
		return nil, ErrRelationshipRequired
	}
	if in.Phone == "" {
		return nil, ErrPhoneRequired
	}

	var created *Contact
	err := s.store.Transaction(ctx, func(tx StoreAPI) error {
		if err := tx.LockEmployee(ctx, employeeID); err != nil {
			return err
		}
		if in.IsPrimary {
			if err := tx.ClearPrimary(ctx, employeeID, ""); err != nil {
				return err
			}
		}
		var err error
		created, err = tx.Create(ctx, employeeID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, employeeID, id string, in UpdateInput) (*Contact, error) {
	if !ids.Valid(employeeID) {
		return nil, ErrEmployeeNotFound
	}
	if !ids.Valid(id) {
		return nil, ErrContactNotFound
	}
	if err := trimRequired(&in.FullName, ErrFullNameRequired); err != nil {
		return nil, err
	}
	if err := trimRequired(&in.Relationship, ErrRelationshipRequired); err != nil {
		return nil, err
	}
	if err := trimRequired(&in.Phone, ErrPhoneRequired); err != nil {
		return nil, err
	}

	var updated *Contact
	err := s.store.Transaction(ctx, func(tx StoreAPI) error {
		if err := tx.LockEmployee(ctx, employeeID); err != nil {
			return err
		}
		current, err := tx.Get(ctx, employeeID, id)
		if err != nil {
			return err
		}
		if in.IsPrimary != nil && *in.IsPrimary != current.IsPrimary {
			if *in.IsPrimary {
				if err := tx.ClearPrimary(ctx, employeeID, id); err != nil {
					return err
				}
			} else {
				all, err := tx.List(ctx, employeeID)
				if err != nil {
					return err
				}
				if !otherPrimary(all, id) {
					return ErrCannotUnsetPrimary
				}
			}
		}
		if err := tx.Update(ctx, employeeID, id, in); err != nil {
			return err
		}
		updated, err = tx.Get(ctx, employeeID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete refuses to remove the primary contact while non-primary contacts
// would be left behind. Removing the last remaining contact is allowed.
func (s *Service) Delete(ctx context.Context, employeeID, id string) error {
	if !ids.Valid(employeeID) {
		return ErrEmployeeNotFound
	}
	if !ids.Valid(id) {
		return ErrContactNotFound
	}
	return s.store.Transaction(ctx, func(tx StoreAPI) error {
		if err := tx.LockEmployee(ctx, employeeID); err != nil {
			return err
		}
		current, err := tx.Get(ctx, employeeID, id)
		if err != nil {
			return err
		}
		if current.IsPrimary {
			all, err := tx.List(ctx, employeeID)
			if err != nil {
				return err
			}
			if len(all) > 1 && !otherPrimary(all, id) {
				return ErrCannotDeletePrimary
			}
		}
		return tx.Delete(ctx, employeeID, id)
	})
}

func otherPrimary(all []Contact, exceptID string) bool {
	for _, c := range all {
		if c.IsPrimary && c.ID != exceptID {
			return true
		}
	}
	return false
}

func trimRequired(value **string, missing error) error {
	if *value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(**value)
	if trimmed == "" {
		return missing
	}
	*value = &trimmed
	return nil
}
