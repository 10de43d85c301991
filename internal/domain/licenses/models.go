package licenses

import (
	"io"
	"time"

	"opsflow/internal/platform/optional"
)

type License struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	EmployeeName     string     `json:"employeeName,omitempty"`
	Name             string     `json:"name"`
	LicenseNumber    string     `json:"licenseNumber"`
	IssuingAuthority string     `json:"issuingAuthority"`
	IssueDate        *time.Time `json:"issueDate,omitempty"`
	ExpiryDate       *time.Time `json:"expiryDate,omitempty"`
	DocumentURL      string     `json:"documentUrl"`
	Notes            string     `json:"notes"`
	RenewalPending   bool       `json:"renewalPending"`
	Status           string     `json:"status"`
	DaysUntilExpiry  *int       `json:"daysUntilExpiry"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Name             string
	LicenseNumber    string
	IssuingAuthority string
	IssueDate        *time.Time
	ExpiryDate       *time.Time
	DocumentURL      string
	Notes            string
	RenewalPending   bool
}

type UpdateInput struct {
	Name             *string
	LicenseNumber    optional.Value[string]
	IssuingAuthority optional.Value[string]
	IssueDate        optional.Value[time.Time]
	ExpiryDate       optional.Value[time.Time]
	DocumentURL      optional.Value[string]
	Notes            optional.Value[string]
	RenewalPending   *bool
}

type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type RenewInput struct {
	ExpiryDate time.Time
	IssueDate  *time.Time
	Document   *File
}

type ListFilter struct {
	EmployeeID string
	Status     string
}
