package inductions

import "context"

type StoreAPI interface {
	Transaction(ctx context.Context, fn func(StoreAPI) error) error
	Get(ctx context.Context, id string) (*Induction, error)
	List(ctx context.Context, filter ListFilter) ([]Induction, error)
	Create(ctx context.Context, employeeID string, in CreateInput) (*Induction, error)
	Update(ctx context.Context, id string, in UpdateInput) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	EmployeeExists(ctx context.Context, id string) (bool, error)
}
