package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.RecordFetch("openweathermap", "ok")
	c.RecordFetch("openweathermap", "ok")
	c.RecordAlert("Stowe")
	c.RecordWrite("add")
	c.SetBudgetRemaining(897)
	c.RecordAPIRequest("/health", "GET", "200", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ForecastFetchesTotal.WithLabelValues("openweathermap", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.AlertsRaisedTotal.WithLabelValues("Stowe")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RecordWritesTotal.WithLabelValues("add")))
	assert.Equal(t, 897.0, testutil.ToFloat64(c.CallBudgetRemaining))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.APIRequestsTotal.WithLabelValues("/health", "GET", "200")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordFetch("p", "error")
		c.RecordCacheHit()
		c.RecordBadge("first_day")
		c.RecordStoreError("load")
		c.SetBudgetRemaining(1)
		c.AlertCheckTimer().ObserveDuration()
	})
}
