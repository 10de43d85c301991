package contacts

import "context"

type StoreAPI interface {
	Transaction(ctx context.Context, fn func(StoreAPI) error) error
	// LockEmployee serializes contact writes for one employee until the transaction ends.
	LockEmployee(ctx context.Context, employeeID string) error
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	List(ctx context.Context, employeeID string) ([]Contact, error)
	Get(ctx context.Context, employeeID, id string) (*Contact, error)
	Create(ctx context.Context, employeeID string, in CreateInput) (*Contact, error)
	Update(ctx context.Context, employeeID, id string, in UpdateInput) error
	ClearPrimary(ctx context.Context, employeeID, exceptID string) error
	Delete(ctx context.Context, employeeID, id string) error
}
