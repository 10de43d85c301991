package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"opsflow/internal/platform/db"
)

const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

type Run struct {
	ID          string         `json:"id"`
	JobType     string         `json:"jobType"`
	Status      string         `json:"status"`
	Details     map[string]any `json:"details"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt"`
}

// RunStore keeps the job_runs history.
type RunStore interface {
	Start(ctx context.Context, jobType string) (string, error)
	Finish(ctx context.Context, id, status string, details []byte) error
	List(ctx context.Context, jobType string, limit, offset int) ([]Run, error)
}

type Store struct {
	DB db.Conn
}

func NewStore(conn db.Conn) *Store {
	return &Store{DB: conn}
}

func (s *Store) Start(ctx context.Context, jobType string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, jobType, RunRunning).Scan(&id)
	return id, err
}

func (s *Store) Finish(ctx context.Context, id, status string, details []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, id)
	return err
}

func (s *Store) List(ctx context.Context, jobType string, limit, offset int) ([]Run, error) {
	query := `SELECT id, job_type, status, details_json, started_at, completed_at FROM job_runs`
	args := []any{}
	if jobType != "" {
		args = append(args, jobType)
		query += " WHERE job_type = $1"
	}
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var detailsRaw []byte
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &detailsRaw, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		run.Details = decodeDetails(detailsRaw)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func decodeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
