package employees

import "context"

type StoreAPI interface {
	Get(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context, filter ListFilter) ([]Employee, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	Create(ctx context.Context, in CreateInput) (*Employee, error)
	Update(ctx context.Context, id string, in UpdateInput) error
	Delete(ctx context.Context, id string) error
}
