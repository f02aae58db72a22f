package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection. A nil *Collector is
// valid and records nothing.
type Collector struct {
	// API
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Ski days
	RecordWritesTotal  *prometheus.CounterVec
	BadgesAwardedTotal *prometheus.CounterVec
	StoreErrorsTotal   *prometheus.CounterVec

	// Weather
	ForecastFetchesTotal *prometheus.CounterVec
	ForecastCacheHits    prometheus.Counter
	AlertsRaisedTotal    *prometheus.CounterVec
	AlertCheckDuration   prometheus.Histogram
	CallBudgetRemaining  prometheus.Gauge
}

// NewCollector registers the collector's metrics with reg.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		APIRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by route, method, and status",
			},
			[]string{"route", "method", "status"},
		),
		APIRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"route"},
		),
		RecordWritesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ski_day_writes_total",
				Help:      "Ski day record writes by operation",
			},
			[]string{"op"},
		),
		BadgesAwardedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "badges_awarded_total",
				Help:      "Badges newly earned by badge id",
			},
			[]string{"badge"},
		),
		StoreErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Record store failures by operation",
			},
			[]string{"op"},
		),
		ForecastFetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forecast_fetches_total",
				Help:      "Outbound forecast requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		ForecastCacheHits: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forecast_cache_hits_total",
				Help:      "Forecasts served from the in-memory cache",
			},
		),
		AlertsRaisedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "powder_alerts_total",
				Help:      "Powder alerts raised by resort",
			},
			[]string{"resort"},
		),
		AlertCheckDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "alert_check_duration_seconds",
				Help:      "Duration of a full alert check in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		CallBudgetRemaining: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "forecast_call_budget_remaining",
				Help:      "Forecast API calls left for the current day",
			},
		),
	}
}

// Timer provides timing functionality for operations.
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer starts a timer feeding histogram. histogram may be nil.
func NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{start: time.Now(), observer: histogram}
}

// ObserveDuration records the elapsed time since timer creation.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(d.Seconds())
	}
	return d
}

// AlertCheckTimer times one alert check.
func (c *Collector) AlertCheckTimer() *Timer {
	if c == nil {
		return NewTimer(nil)
	}
	return NewTimer(c.AlertCheckDuration)
}

func (c *Collector) RecordAPIRequest(route, method, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.APIRequestsTotal.WithLabelValues(route, method, status).Inc()
	c.APIRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (c *Collector) RecordWrite(op string) {
	if c == nil {
		return
	}
	c.RecordWritesTotal.WithLabelValues(op).Inc()
}

func (c *Collector) RecordBadge(id string) {
	if c == nil {
		return
	}
	c.BadgesAwardedTotal.WithLabelValues(id).Inc()
}

func (c *Collector) RecordStoreError(op string) {
	if c == nil {
		return
	}
	c.StoreErrorsTotal.WithLabelValues(op).Inc()
}

func (c *Collector) RecordFetch(provider, outcome string) {
	if c == nil {
		return
	}
	c.ForecastFetchesTotal.WithLabelValues(provider, outcome).Inc()
}

func (c *Collector) RecordCacheHit() {
	if c == nil {
		return
	}
	c.ForecastCacheHits.Inc()
}

func (c *Collector) RecordAlert(resort string) {
	if c == nil {
		return
	}
	c.AlertsRaisedTotal.WithLabelValues(resort).Inc()
}

func (c *Collector) SetBudgetRemaining(n int) {
	if c == nil {
		return
	}
	c.CallBudgetRemaining.Set(float64(n))
}
