package tasks

import (
	"context"
	"math"
	"slices"
	"strings"

	"opsflow/internal/platform/ids"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// NormalizeStatus accepts "In Progress", "in-progress" and "in_progress" alike.
func NormalizeStatus(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(value)
}

func ValidStatus(value string) bool {
	return slices.Contains(Statuses, value)
}

func ValidPriority(value string) bool {
	return slices.Contains(Priorities, value)
}

func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	if !ids.Valid(id) {
		return nil, ErrTaskNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	if filter.Status != "" {
		filter.Status = NormalizeStatus(filter.Status)
		if !ValidStatus(filter.Status) {
			return nil, ErrStatusInvalid
		}
	}
	if filter.AssigneeID != "" && !ids.Valid(filter.AssigneeID) {
		return nil, ErrAssigneeInvalid
	}
	return s.store.List(ctx, filter)
}

// Board groups tasks into one column per status, each ordered by position.
func (s *Service) Board(ctx context.Context, filter ListFilter) (*Board, error) {
	items, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	board := &Board{Columns: make([]Column, len(Statuses))}
	index := make(map[string]int, len(Statuses))
	for i, status := range Statuses {
		board.Columns[i] = Column{Status: status, Tasks: []Task{}}
		index[status] = i
	}
	for _, t := range items {
		i, ok := index[t.Status]
		if !ok {
			continue
		}
		board.Columns[i].Tasks = append(board.Columns[i].Tasks, t)
	}
	for i := range board.Columns {
		slices.SortStableFunc(board.Columns[i].Tasks, func(a, b Task) int {
			return a.Position - b.Position
		})
	}
	return board, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	in.Status = NormalizeStatus(in.Status)
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !ValidStatus(in.Status) {
		return nil, ErrStatusInvalid
	}
	in.Priority = strings.ToLower(strings.TrimSpace(in.Priority))
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !ValidPriority(in.Priority) {
		return nil, ErrPriorityInvalid
	}
	in.AssigneeID = strings.TrimSpace(in.AssigneeID)
	if in.AssigneeID != "" && !ids.Valid(in.AssigneeID) {
		return nil, ErrAssigneeInvalid
	}
	return s.store.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Task, error) {
	if !ids.Valid(id) {
		return nil, ErrTaskNotFound
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		in.Title = &title
	}
	if in.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*in.Priority))
		if !ValidPriority(priority) {
			return nil, ErrPriorityInvalid
		}
		in.Priority = &priority
	}
	if in.Status != nil {
		status := NormalizeStatus(*in.Status)
		if !ValidStatus(status) {
			return nil, ErrStatusInvalid
		}
		in.Status = &status
	}
	if in.AssigneeID.Set && in.AssigneeID.V != "" && !ids.Valid(in.AssigneeID.V) {
		return nil, ErrAssigneeInvalid
	}

	err := s.store.Transaction(ctx, func(tx StoreAPI) error {
		if err := tx.Update(ctx, id, in); err != nil {
			return err
		}
		if in.Status == nil {
			return nil
		}
		current, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == *in.Status {
			return nil
		}
		return moveTask(ctx, tx, current, *in.Status, math.MaxInt)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// Move places the task at position within the status column. Positions past
// the end append; both affected columns are renumbered from zero.
func (s *Service) Move(ctx context.Context, id string, in MoveInput) (*Task, error) {
	if !ids.Valid(id) {
		return nil, ErrTaskNotFound
	}
	status := NormalizeStatus(in.Status)
	if !ValidStatus(status) {
		return nil, ErrStatusInvalid
	}
	if in.Position < 0 {
		return nil, ErrPositionInvalid
	}
	err := s.store.Transaction(ctx, func(tx StoreAPI) error {
		current, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		return moveTask(ctx, tx, current, status, in.Position)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return ErrTaskNotFound
	}
	return s.store.Delete(ctx, id)
}

func moveTask(ctx context.Context, tx StoreAPI, task *Task, status string, position int) error {
	// Columns are locked in board order so concurrent moves cannot deadlock.
	columns := map[string][]string{}
	for _, st := range Statuses {
		if st != task.Status && st != status {
			continue
		}
		column, err := tx.ColumnIDs(ctx, st)
		if err != nil {
			return err
		}
		columns[st] = without(column, task.ID)
	}

	target := columns[status]
	position = min(position, len(target))
	target = slices.Insert(target, position, task.ID)

	if status != task.Status {
		if err := tx.Reorder(ctx, task.Status, columns[task.Status]); err != nil {
			return err
		}
	}
	return tx.Reorder(ctx, status, target)
}

func without(values []string, drop string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}
