package credentials

import "opsflow/internal/domain/apperr"

var (
	ErrCredentialNotFound = apperr.NotFound("credential not found")
	ErrNameRequired       = apperr.FieldInvalid("name", "name is required")
	ErrCategoryInvalid    = apperr.FieldInvalid("category", "category must not be empty")
)
