package tasks

import "opsflow/internal/domain/apperr"

var (
	ErrTaskNotFound     = apperr.NotFound("task not found")
	ErrAssigneeNotFound = apperr.NotFound("assignee not found")
	ErrTitleRequired    = apperr.FieldInvalid("title", "title is required")
	ErrStatusInvalid    = apperr.FieldInvalid("status", "status must be one of todo, in_progress, review, done")
	ErrPriorityInvalid  = apperr.FieldInvalid("priority", "priority must be one of low, medium, high")
	ErrAssigneeInvalid  = apperr.FieldInvalid("assigneeId", "assigneeId must be a UUID")
	ErrPositionInvalid  = apperr.FieldInvalid("position", "position must not be negative")
)
