package employees

import "opsflow/internal/domain/apperr"

var (
	ErrEmployeeNotFound = apperr.NotFound("employee not found")
	ErrEmailTaken       = apperr.Conflict("an employee with this email already exists")
	ErrFirstNameMissing = apperr.FieldInvalid("firstName", "firstName is required")
	ErrLastNameMissing  = apperr.FieldInvalid("lastName", "lastName is required")
	ErrEmailInvalid     = apperr.FieldInvalid("email", "email must be a valid address")
	ErrStatusInvalid    = apperr.FieldInvalid("status", "status must be one of Active, Inactive, On Leave, Terminated, Pending")
)
