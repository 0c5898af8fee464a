package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/sales", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", "/api/sales", 200, 10*time.Millisecond)
	m.ObserveRequest("POST", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/sales", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "unmatched", "404")))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.SaleCreated()
	m.StockConflict()
	m.StockConflict()
	m.GateRejected("subscription")
	m.RateLimited("auth")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.salesCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stockConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gateRejections.WithLabelValues("subscription")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("auth")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SaleCreated()
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.GateRejected("token")
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.SaleCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pharmatrack_sales_created_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
