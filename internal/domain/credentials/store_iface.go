package credentials

import "context"

type StoreAPI interface {
	Get(ctx context.Context, id string) (*Credential, error)
	List(ctx context.Context, filter ListFilter) ([]Credential, error)
	Create(ctx context.Context, in CreateInput) (*Credential, error)
	Update(ctx context.Context, id string, in UpdateInput) error
	Delete(ctx context.Context, id string) error
	CategoryCounts(ctx context.Context) (map[string]int, error)
}
