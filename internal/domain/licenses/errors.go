package licenses

import "opsflow/internal/domain/apperr"

var (
	ErrLicenseNotFound  = apperr.NotFound("license not found")
	ErrEmployeeNotFound = apperr.NotFound("employee not found")
	ErrNameRequired     = apperr.FieldInvalid("name", "name is required")
	ErrDatesOutOfOrder  = apperr.FieldInvalid("expiryDate", "expiryDate must not be before issueDate")
	ErrStatusInvalid    = apperr.FieldInvalid("status", "status must be one of Valid, Expired, Expiring Soon, Renewal Pending")
	ErrUploadsDisabled  = apperr.Validation("file uploads are not configured")
)
