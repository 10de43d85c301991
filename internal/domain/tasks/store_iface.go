package tasks

import "context"

type StoreAPI interface {
	Transaction(ctx context.Context, fn func(StoreAPI) error) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, filter ListFilter) ([]Task, error)
	Create(ctx context.Context, in CreateInput) (*Task, error)
	Update(ctx context.Context, id string, in UpdateInput) error
	Delete(ctx context.Context, id string) error
	// ColumnIDs returns the ids in a column ordered by position and locks the rows.
	ColumnIDs(ctx context.Context, status string) ([]string, error)
	// Reorder writes status and positions 0..n-1 for ids in the given order.
	Reorder(ctx context.Context, status string, ids []string) error
}
