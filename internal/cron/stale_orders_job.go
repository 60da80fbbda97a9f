package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

const defaultPendingOrderTTL = 6 * time.Hour

type pendingOrderCanceller interface {
	CancelPendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type affectedRecorder interface {
	AddAffected(job string, n int64)
}

// StaleOrdersJobParams configure the job that cancels abandoned orders.
type StaleOrdersJobParams struct {
	Logger  *logger.Logger
	Orders  pendingOrderCanceller
	TTL     time.Duration
	Metrics affectedRecorder
}

type staleOrdersJob struct {
	logg    *logger.Logger
	orders  pendingOrderCanceller
	ttl     time.Duration
	metrics affectedRecorder
	now     func() time.Time
}

// NewStaleOrdersJob builds the job that cancels orders left pending longer than TTL.
func NewStaleOrdersJob(params StaleOrdersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingOrderTTL
	}
	return &staleOrdersJob{
		logg:    params.Logger,
		orders:  params.Orders,
		ttl:     ttl,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

func (j *staleOrdersJob) Name() string { return "stale-orders" }

func (j *staleOrdersJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	n, err := j.orders.CancelPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cancel pending orders: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddAffected(j.Name(), n)
	}
	if n > 0 {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{"cancelled": n, "cutoff": cutoff}), "stale orders cancelled")
	}
	return nil
}
