package contacts

import "opsflow/internal/domain/apperr"

var (
	ErrEmployeeNotFound     = apperr.NotFound("employee not found")
	ErrContactNotFound      = apperr.NotFound("emergency contact not found")
	ErrFullNameRequired     = apperr.FieldInvalid("fullName", "fullName is required")
	ErrRelationshipRequired = apperr.FieldInvalid("relationship", "relationship is required")
	ErrPhoneRequired        = apperr.FieldInvalid("phone", "phone is required")
	ErrCannotUnsetPrimary   = apperr.FieldInvalid("isPrimary", "cannot unset the only primary contact; mark another contact as primary instead")
	ErrCannotDeletePrimary  = apperr.Validation("cannot delete the primary contact while other contacts remain; mark another contact as primary first")
	ErrPrimaryConflict      = apperr.Conflict("another primary contact was set concurrently")
)
