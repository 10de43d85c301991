package employees

import (
	"time"

	"opsflow/internal/platform/optional"
)

const (
	StatusActive     = "Active"
	StatusInactive   = "Inactive"
	StatusOnLeave    = "On Leave"
	StatusTerminated = "Terminated"
	StatusPending    = "Pending"
)

var Statuses = []string{StatusActive, StatusInactive, StatusOnLeave, StatusTerminated, StatusPending}

type Employee struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Position   string     `json:"position"`
	Department string     `json:"department"`
	Status     string     `json:"status"`
	HireDate   *time.Time `json:"hireDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type CreateInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Position   string
	Department string
	Status     string
	HireDate   *time.Time
}

type UpdateInput struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      optional.Value[string]
	Position   optional.Value[string]
	Department optional.Value[string]
	Status     *string
	HireDate   optional.Value[time.Time]
}

type ListFilter struct {
	Status     string
	Department string
	Query      string
	Limit      int
	Offset     int
}
