package credentials

import (
	"time"

	"opsflow/internal/platform/optional"
)

const DefaultCategory = "General"

var DefaultCategories = []string{DefaultCategory, "Email", "Banking", "Social Media", "Government", "Software", "Utilities"}

type Credential struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Password    string    `json:"password,omitempty"`
	HasPassword bool      `json:"hasPassword"`
	URL         string    `json:"url"`
	Category    string    `json:"category"`
	Notes       string    `json:"notes"`
	Strength    string    `json:"strength"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Name     string
	Username string
	Password string
	URL      string
	Category string
	Notes    string
}

type UpdateInput struct {
	Name     *string
	Username optional.Value[string]
	Password optional.Value[string]
	URL      optional.Value[string]
	Category *string
	Notes    optional.Value[string]
}

type ListFilter struct {
	Category string
	Query    string
}

type Category struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Default bool   `json:"default"`
}
