package tasks

import (
	"time"

	"opsflow/internal/platform/optional"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Statuses is also the column order of the board.
var Statuses = []string{StatusTodo, StatusInProgress, StatusReview, StatusDone}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssigneeID   *string    `json:"assigneeId"`
	AssigneeName string     `json:"assigneeName,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Position     int        `json:"position"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	AssigneeID  string
	DueDate     *time.Time
}

// UpdateInput changes task fields in place. A status change moves the task to
// the end of the new column.
type UpdateInput struct {
	Title       *string
	Description optional.Value[string]
	Status      *string
	Priority    *string
	AssigneeID  optional.Value[string]
	DueDate     optional.Value[time.Time]
}

type MoveInput struct {
	Status   string
	Position int
}

type ListFilter struct {
	Status     string
	AssigneeID string
}

type Column struct {
	Status string `json:"status"`
	Tasks  []Task `json:"tasks"`
}

type Board struct {
	Columns []Column `json:"columns"`
}
