package contacts

import (
	"time"

	"opsflow/internal/platform/optional"
)

type Contact struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	FullName     string    `json:"fullName"`
	Relationship string    `json:"relationship"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	IsPrimary    bool      `json:"isPrimary"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateInput struct {
	FullName     string
	Relationship string
	Phone        string
	Email        string
	Address      string
	IsPrimary    bool
}

type UpdateInput struct {
	FullName     *string
	Relationship *string
	Phone        *string
	Email        optional.Value[string]
	Address      optional.Value[string]
	IsPrimary    *bool
}
