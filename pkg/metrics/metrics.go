package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records HTTP and café domain metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	contentWrites *prometheus.CounterVec
	ordersPlaced  *prometheus.CounterVec
	couponChecks  *prometheus.CounterVec
	editToggles   *prometheus.CounterVec
}

// New registers the collectors on reg. Passing nil returns a no-op collector.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Collector {
	if reg == nil {
		return &Collector{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	contentWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "content_writes_total",
		Help: "Content writes by resource and operation.",
	}, []string{"resource", "op"})
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed, split by whether a coupon was applied.",
	}, []string{"coupon"})
	couponChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_validations_total",
		Help: "Coupon validations by result.",
	}, []string{"result"})
	editToggles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edit_mode_toggles_total",
		Help: "Edit mode toggles by resulting state.",
	}, []string{"state"})
	reg.MustRegister(requests, duration, contentWrites, ordersPlaced, couponChecks, editToggles)
	return &Collector{
		gatherer:      gatherer,
		requests:      requests,
		duration:      duration,
		contentWrites: contentWrites,
		ordersPlaced:  ordersPlaced,
		couponChecks:  couponChecks,
		editToggles:   editToggles,
	}
}

// ObserveRequest records a finished HTTP request.
func (c *Collector) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if c == nil || c.requests == nil {
		return
	}
	route = normalizeLabel(route)
	c.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// IncContentWrite counts a write against a content resource.
func (c *Collector) IncContentWrite(resource, op string) {
	if c == nil || c.contentWrites == nil {
		return
	}
	c.contentWrites.WithLabelValues(normalizeLabel(resource), normalizeLabel(op)).Inc()
}

// IncOrderPlaced counts a persisted order.
func (c *Collector) IncOrderPlaced(withCoupon bool) {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.WithLabelValues(strconv.FormatBool(withCoupon)).Inc()
}

// IncCouponCheck counts a coupon validation outcome ("valid" or a rejection code).
func (c *Collector) IncCouponCheck(result string) {
	if c == nil || c.couponChecks == nil {
		return
	}
	c.couponChecks.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncEditToggle counts an edit mode toggle.
func (c *Collector) IncEditToggle(active bool) {
	if c == nil || c.editToggles == nil {
		return
	}
	state := "off"
	if active {
		state = "on"
	}
	c.editToggles.WithLabelValues(state).Inc()
}

// Handler exposes the gathered metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
