package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// sample gathers reg and returns the series of family name whose labels
// include every pair in labels.
func sample(t *testing.T, reg prometheus.Gatherer, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if hasLabels(m, labels) {
				return m
			}
		}
	}
	require.Failf(t, "series not found", "%s %v", name, labels)
	return nil
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	matched := 0
	for _, pair := range m.GetLabel() {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, reg)

	m.ObserveRequest("/api/v1/menu", http.MethodGet, http.StatusOK, 120*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, http.StatusNotFound, time.Millisecond)
	m.IncContentWrite("menu", "update")
	m.IncContentWrite("menu", "update")
	m.IncOrderPlaced(true)
	m.IncCouponCheck("valid")
	m.IncEditToggle(true)
	m.IncEditToggle(false)

	counter := func(name string, labels map[string]string) float64 {
		return sample(t, reg, name, labels).GetCounter().GetValue()
	}
	require.Equal(t, 2.0, counter("content_writes_total", map[string]string{"resource": "menu", "op": "update"}))
	require.Equal(t, 1.0, counter("orders_placed_total", map[string]string{"coupon": "true"}))
	require.Equal(t, 1.0, counter("http_requests_total", map[string]string{"route": "/api/v1/menu", "status": "200"}))
	require.Equal(t, 1.0, counter("http_requests_total", map[string]string{"route": "unknown", "status": "404"}))
	require.Equal(t, 1.0, counter("edit_mode_toggles_total", map[string]string{"state": "on"}))
	require.Equal(t, 1.0, counter("edit_mode_toggles_total", map[string]string{"state": "off"}))

	latency := sample(t, reg, "http_request_duration_seconds", map[string]string{"route": "/api/v1/menu"}).GetHistogram()
	require.EqualValues(t, 1, latency.GetSampleCount())
	require.InDelta(t, 0.12, latency.GetSampleSum(), 0.001)
}

func TestNilCollectorIsNoop(t *testing.T) {
	var m *Collector
	require.NotPanics(t, func() {
		m.ObserveRequest("", http.MethodGet, http.StatusInternalServerError, time.Second)
		m.IncContentWrite("menu", "create")
		m.IncOrderPlaced(false)
		m.IncCouponCheck("")
		m.IncEditToggle(false)
		New(nil, nil).IncCouponCheck("expired")
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, reg)
	m.IncCouponCheck("expired")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `coupon_validations_total{result="expired"} 1`)
}
