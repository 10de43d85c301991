package licenses

import "context"

type StoreAPI interface {
	Transaction(ctx context.Context, fn func(StoreAPI) error) error
	Get(ctx context.Context, id string) (*License, error)
	List(ctx context.Context, filter ListFilter) ([]License, error)
	Create(ctx context.Context, employeeID string, in CreateInput, status string) (*License, error)
	Update(ctx context.Context, id string, in UpdateInput, status string) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	EmployeeExists(ctx context.Context, id string) (bool, error)
}
