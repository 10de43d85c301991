package folders

import (
	"time"

	"opsflow/internal/platform/optional"
)

type Folder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentID    *string   `json:"parentId"`
	Path        string    `json:"path"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Name        string
	Description string
	// ParentID of "", "root" or any non-UUID value places the folder at the top level.
	ParentID string
}

type UpdateInput struct {
	Name        *string
	Description optional.Value[string]
	ParentID    optional.Value[string]
}

// Changes is the resolved column set written by the store.
type Changes struct {
	Name        *string
	Description optional.Value[string]
	ParentID    optional.Value[string]
	Path        *string
}

type ListFilter struct {
	ParentID string
	TopLevel bool
}
