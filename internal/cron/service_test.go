package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	held     bool
	released int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.held = false
	f.released++
	return nil
}

type countingJob struct {
	name string
	err  error
	runs int
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

type runLog map[string]string

func (r runLog) ObserveRun(job string, _ time.Duration, err error) {
	r[job] = "success"
	if err != nil {
		r[job] = "failure"
	}
}

func TestRunOnceRunsEveryJobDespiteFailures(t *testing.T) {
	ok := &countingJob{name: "sweep"}
	bad := &countingJob{name: "reindex", err: errors.New("db unavailable")}
	lock := &fakeLock{}
	runs := runLog{}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(ok, bad),
		Lock:     lock,
		Metrics:  runs,
	})
	require.NoError(t, err)

	ran, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, ran)
	require.Equal(t, 1, ok.runs)
	require.Equal(t, 1, bad.runs)
	require.Equal(t, runLog{"sweep": "success", "reindex": "failure"}, runs)
	require.Equal(t, 1, lock.released)
	require.False(t, lock.held)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &countingJob{name: "sweep"}
	svc, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: &fakeLock{held: true}})
	require.NoError(t, err)

	ran, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.False(t, ran)
	require.Zero(t, job.runs)
}

func TestRunOnceReleasesAfterCancel(t *testing.T) {
	lock := &fakeLock{}
	ctx, cancel := context.WithCancel(context.Background())
	job := &cancelingJob{cancel: cancel}
	svc, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: lock})
	require.NoError(t, err)

	_, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, lock.released)
}

type cancelingJob struct{ cancel context.CancelFunc }

func (cancelingJob) Name() string { return "cancel" }

func (j *cancelingJob) Run(context.Context) error {
	j.cancel()
	return nil
}

type tickJob struct{ runs atomic.Int32 }

func (*tickJob) Name() string { return "tick" }

func (j *tickJob) Run(context.Context) error {
	j.runs.Add(1)
	return nil
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &tickJob{}
	svc, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: &fakeLock{}, Interval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("service did not stop")
	}
}

func TestNewServiceRequiresLoggerAndLock(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: &fakeLock{}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Logger: testLogger()})
	require.Error(t, err)
}
