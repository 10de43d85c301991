package documents

import (
	"io"
	"time"

	"opsflow/internal/platform/optional"
)

const (
	ActionDelete = "delete"
	ActionMove   = "move"
)

type Document struct {
	ID         string    `json:"id"`
	FolderID   *string   `json:"folderId"`
	EmployeeID *string   `json:"employeeId"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	StorageKey string    `json:"-"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Name       string
	URL        string
	StorageKey string
	Size       int64
	Type       string
	FolderID   string
	EmployeeID string
}

type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
	FolderID    string
	EmployeeID  string
}

type UpdateInput struct {
	Name     *string
	Type     optional.Value[string]
	FolderID optional.Value[string]
}

type ListFilter struct {
	FolderID   string
	Unfiled    bool
	EmployeeID string
	Query      string
	Limit      int
	Offset     int
}

type BatchRequest struct {
	Action         string
	DocumentIDs    []string
	TargetFolderID string
}

type BatchResult struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}
