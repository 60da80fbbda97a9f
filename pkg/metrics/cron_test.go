package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsRecordsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveRun("stale-orders", 50*time.Millisecond, nil)
	m.ObserveRun("stale-orders", 10*time.Millisecond, errors.New("boom"))
	m.AddAffected("stale-orders", 3)
	m.AddAffected("stale-orders", 0)

	for result, want := range map[string]float64{"success": 1, "failure": 1} {
		got := sample(t, reg, "cron_job_runs_total", map[string]string{"job": "stale-orders", "result": result})
		require.Equal(t, want, got.GetCounter().GetValue(), result)
	}
	affected := sample(t, reg, "cron_job_rows_affected_total", map[string]string{"job": "stale-orders"})
	require.Equal(t, 3.0, affected.GetCounter().GetValue())
	runs := sample(t, reg, "cron_job_duration_seconds", map[string]string{"job": "stale-orders"})
	require.EqualValues(t, 2, runs.GetHistogram().GetSampleCount())
}

func TestNilCronJobMetricsIsNoop(t *testing.T) {
	var m *CronJobMetrics
	require.NotPanics(t, func() {
		m.ObserveRun("job", time.Second, nil)
		m.AddAffected("job", 1)
		NewCronJobMetrics(nil).ObserveRun("job", time.Second, errors.New("x"))
	})
}
