package folders

import "context"

type StoreAPI interface {
	Transaction(ctx context.Context, fn func(StoreAPI) error) error
	Get(ctx context.Context, id string) (*Folder, error)
	List(ctx context.Context, filter ListFilter) ([]Folder, error)
	ListChildren(ctx context.Context, parentID string) ([]Folder, error)
	SiblingNameExists(ctx context.Context, parentID *string, name, excludeID string) (bool, error)
	Create(ctx context.Context, folder Folder) (*Folder, error)
	Update(ctx context.Context, id string, changes Changes) error
	UpdatePath(ctx context.Context, id, path string) error
	Delete(ctx context.Context, id string) error
}
