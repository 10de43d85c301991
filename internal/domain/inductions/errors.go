package inductions

import "opsflow/internal/domain/apperr"

var (
	ErrInductionNotFound = apperr.NotFound("induction not found")
	ErrEmployeeNotFound  = apperr.NotFound("employee not found")
	ErrNameRequired      = apperr.FieldInvalid("name", "name is required")
	ErrStatusInvalid     = apperr.FieldInvalid("status", "status must be one of Completed, Pending, Expired, In Progress")
	ErrDatesOutOfOrder   = apperr.FieldInvalid("expiryDate", "expiryDate must not be before completionDate")
)
