package inductions

import (
	"time"

	"opsflow/internal/platform/optional"
)

const (
	StatusCompleted  = "Completed"
	StatusPending    = "Pending"
	StatusExpired    = "Expired"
	StatusInProgress = "In Progress"
)

// WorkflowStatuses are the values a client may store; Expiring Soon is derived only.
var WorkflowStatuses = []string{StatusCompleted, StatusPending, StatusExpired, StatusInProgress}

type Induction struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	EmployeeName    string     `json:"employeeName,omitempty"`
	Name            string     `json:"name"`
	Provider        string     `json:"provider"`
	CompletionDate  *time.Time `json:"completionDate,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	Status          string     `json:"status"`
	StoredStatus    string     `json:"-"`
	Notes           Notes      `json:"notes"`
	DaysUntilExpiry *int       `json:"daysUntilExpiry"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Name           string
	Provider       string
	CompletionDate *time.Time
	ExpiryDate     *time.Time
	Status         string
	Notes          Notes
}

type UpdateInput struct {
	Name           *string
	Provider       optional.Value[string]
	CompletionDate optional.Value[time.Time]
	ExpiryDate     optional.Value[time.Time]
	Status         *string
	Notes          optional.Value[Notes]
}

type ListFilter struct {
	EmployeeID string
	Status     string
}
