package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

type fakeCanceller struct {
	cutoff time.Time
	n      int64
	err    error
}

func (f *fakeCanceller) CancelPendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.n, f.err
}

type affectedCounter map[string]int64

func (a affectedCounter) AddAffected(job string, n int64) { a[job] += n }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestStaleOrdersJobUsesTTLCutoff(t *testing.T) {
	orders := &fakeCanceller{n: 2}
	counter := affectedCounter{}
	job, err := NewStaleOrdersJob(StaleOrdersJobParams{Logger: testLogger(), Orders: orders, TTL: 2 * time.Hour, Metrics: counter})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job.(*staleOrdersJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := now.Add(-2 * time.Hour); !orders.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, orders.cutoff)
	}
	if counter["stale-orders"] != 2 {
		t.Fatalf("expected 2 affected, got %d", counter["stale-orders"])
	}
}

func TestStaleOrdersJobDefaultsTTLAndPropagatesErrors(t *testing.T) {
	orders := &fakeCanceller{err: errors.New("db down")}
	job, err := NewStaleOrdersJob(StaleOrdersJobParams{Logger: testLogger(), Orders: orders})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.(*staleOrdersJob).ttl != defaultPendingOrderTTL {
		t.Fatalf("expected default ttl")
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected repository error")
	}
}

func TestNewStaleOrdersJobRequiresDependencies(t *testing.T) {
	if _, err := NewStaleOrdersJob(StaleOrdersJobParams{Orders: &fakeCanceller{}}); err == nil {
		t.Fatal("expected logger error")
	}
	if _, err := NewStaleOrdersJob(StaleOrdersJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected orders error")
	}
}
