package documents

import "context"

type StoreAPI interface {
	Transaction(ctx context.Context, fn func(StoreAPI) error) error
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context, filter ListFilter) ([]Document, error)
	Create(ctx context.Context, in CreateInput) (*Document, error)
	Update(ctx context.Context, id string, in UpdateInput) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	MoveMany(ctx context.Context, ids []string, folderID *string) (int64, error)
	FolderExists(ctx context.Context, id string) (bool, error)
	EmployeeExists(ctx context.Context, id string) (bool, error)
}
