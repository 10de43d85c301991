package folders

import "opsflow/internal/domain/apperr"

var (
	ErrFolderNotFound = apperr.NotFound("folder not found")
	ErrParentNotFound = apperr.NotFound("parent folder not found")
	ErrNameRequired   = apperr.FieldInvalid("name", "name is required")
	ErrNameInvalid    = apperr.FieldInvalid("name", "name must not contain '/'")
	ErrNameTooLong    = apperr.FieldInvalid("name", "name must be at most 255 characters")
	ErrNameTaken      = apperr.Conflict("a folder with this name already exists in the destination")
	ErrCycle          = apperr.Conflict("a folder cannot be moved into itself or one of its descendants")
	ErrTreeTooDeep    = apperr.Validation("folder tree exceeds the maximum depth")
)
