package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"opsflow/internal/platform/metrics"
)

const (
	JobStatusRefresh    = "status_refresh"
	JobComplianceDigest = "compliance_digest"
)

// Refresher re-derives and persists expiry-driven statuses, returning how many rows changed.
type Refresher interface {
	RefreshStatuses(ctx context.Context) (int, error)
}

// Notifier sends the compliance digest, returning how many items it listed.
type Notifier interface {
	Notify(ctx context.Context) (int, error)
}

type Service struct {
	Runs       RunStore
	Metrics    *metrics.Collector
	Interval   time.Duration
	Refreshers map[string]Refresher
	Notifier   Notifier

	queue chan job
	wg    sync.WaitGroup
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(runs RunStore, collector *metrics.Collector, interval time.Duration, refreshers map[string]Refresher) *Service {
	return &Service{
		Runs:       runs,
		Metrics:    collector,
		Interval:   interval,
		Refreshers: refreshers,
		queue:      make(chan job, 16),
	}
}

// Start runs the worker and, when Interval is positive, schedules a status
// refresh immediately and then on every tick. Both stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
	if s.Interval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.scheduleRefresh(ctx, s.Interval)
		}()
	}
}

// Wait blocks until the goroutines started by Start have returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// RefreshNow runs the status refresh synchronously.
func (s *Service) RefreshNow(ctx context.Context) (any, error) {
	return s.RunNow(ctx, JobStatusRefresh, s.refreshStatuses)
}

func (s *Service) ListRuns(ctx context.Context, jobType string, limit, offset int) ([]Run, error) {
	return s.Runs.List(ctx, jobType, limit, offset)
}

func (s *Service) refreshStatuses(ctx context.Context) (any, error) {
	details := map[string]any{}
	for name, r := range s.Refreshers {
		changed, err := r.RefreshStatuses(ctx)
		if err != nil {
			return details, fmt.Errorf("refresh %s: %w", name, err)
		}
		details[name] = changed
	}
	return details, nil
}

func (s *Service) sendDigest(ctx context.Context) (any, error) {
	notified, err := s.Notifier.Notify(ctx)
	return map[string]any{"notified": notified}, err
}

// enqueueScheduled queues a refresh followed by the digest; the single worker
// keeps them in order.
func (s *Service) enqueueScheduled() {
	s.Enqueue(JobStatusRefresh, s.refreshStatuses)
	if s.Notifier != nil {
		s.Enqueue(JobComplianceDigest, s.sendDigest)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID, err := s.Runs.Start(ctx, j.Type)
	if err != nil {
		slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
	}

	started := time.Now()
	details, err := j.Run(ctx)
	status := RunCompleted
	if err != nil {
		status = RunFailed
	}
	if s.Metrics != nil {
		s.Metrics.RecordJob(j.Type, err)
	}
	slog.Info("job run finished", "jobType", j.Type, "status", status, "durationMs", time.Since(started).Milliseconds())

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.Runs.Finish(context.WithoutCancel(ctx), runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleRefresh(ctx context.Context, interval time.Duration) {
	s.enqueueScheduled()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueScheduled()
		}
	}
}
