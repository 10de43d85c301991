package documents

import "opsflow/internal/domain/apperr"

var (
	ErrDocumentNotFound     = apperr.NotFound("document not found")
	ErrFolderNotFound       = apperr.NotFound("folder not found")
	ErrTargetFolderNotFound = apperr.NotFound("target folder not found")
	ErrEmployeeNotFound     = apperr.NotFound("employee not found")
	ErrNameRequired         = apperr.FieldInvalid("name", "name is required")
	ErrURLRequired          = apperr.FieldInvalid("url", "url is required")
	ErrSizeInvalid          = apperr.FieldInvalid("size", "size must not be negative")
	ErrUnknownAction        = apperr.FieldInvalid("action", "action must be delete or move")
	ErrDocumentIDsInvalid   = apperr.FieldInvalid("documentIds", "documentIds must be a non-empty list of UUIDs")
	ErrTargetRequired       = apperr.FieldInvalid("targetFolderId", "targetFolderId is required for move")
	ErrFileRequired         = apperr.FieldInvalid("file", "file is required")
	ErrUploadsDisabled      = apperr.Validation("file uploads are not configured")
)
