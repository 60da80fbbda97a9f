package cron

import (
	"context"
	"errors"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

const defaultInterval = 15 * time.Minute

type runRecorder interface {
	ObserveRun(job string, elapsed time.Duration, err error)
}

// ServiceParams configure the cron service. Metrics is optional.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  runRecorder
	Interval time.Duration
}

// Service runs every registered job once per interval, on whichever worker
// holds the lock for that cycle.
type Service struct {
	ServiceParams
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("cron service: logger is required")
	case params.Lock == nil:
		return nil, errors.New("cron service: lock is required")
	}
	if params.Registry == nil {
		params.Registry = NewRegistry()
	}
	if params.Interval <= 0 {
		params.Interval = defaultInterval
	}
	return &Service{ServiceParams: params}, nil
}

// Run fires a cycle immediately and then on every tick until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.Logger.Info(s.Logger.WithField(ctx, "interval", s.Interval.String()), "cron service started")
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.Logger.Error(ctx, "cron cycle failed", err)
		}
		select {
		case <-ctx.Done():
			s.Logger.Info(ctx, "cron service stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce runs a single cycle. It reports false without error when another
// worker holds the lock. Job failures are logged and recorded, not returned.
func (s *Service) RunOnce(ctx context.Context) (bool, error) {
	held, err := s.Lock.Acquire(ctx)
	if err != nil {
		return false, err
	}
	if !held {
		s.Logger.Info(ctx, "cron lock held elsewhere, skipping cycle")
		return false, nil
	}
	defer func() {
		// Release even when ctx was canceled mid-cycle.
		if err := s.Lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.Logger.Error(ctx, "cron lock release failed", err)
		}
	}()

	for _, job := range s.Registry.Jobs() {
		if ctx.Err() != nil {
			break
		}
		s.runJob(ctx, job)
	}
	return true, nil
}

func (s *Service) runJob(ctx context.Context, job Job) {
	ctx = s.Logger.WithFields(ctx, map[string]any{"job": job.Name(), "event": "cron.job"})
	started := time.Now()
	err := job.Run(ctx)
	took := time.Since(started)
	if s.Metrics != nil {
		s.Metrics.ObserveRun(job.Name(), took, err)
	}

	ctx = s.Logger.WithField(ctx, "duration_ms", took.Milliseconds())
	if err != nil {
		s.Logger.Error(ctx, "cron job failed", err)
		return
	}
	s.Logger.Info(ctx, "cron job finished")
}
