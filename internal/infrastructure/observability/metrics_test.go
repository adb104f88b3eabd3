package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func TestObserveCheckout(t *testing.T) {
	m := NewMetrics()

	m.ObserveCheckout(sales.ResultOK, entity.PaymentCash, decimal.RequireFromString("90.50"))
	m.ObserveCheckout(sales.ResultOK, entity.PaymentCash, decimal.RequireFromString("9.50"))
	m.ObserveCheckout(sales.ResultInsufficientStock, entity.PaymentCard, decimal.Zero)
	m.ObserveCheckout(sales.ResultInvalid, "", decimal.Zero)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkoutsTotal.WithLabelValues(sales.ResultOK, "CASH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkoutsTotal.WithLabelValues(sales.ResultInsufficientStock, "CARD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkoutsTotal.WithLabelValues(sales.ResultInvalid, "unknown")))
	assert.InDelta(t, 100.0, testutil.ToFloat64(m.soldAmount.WithLabelValues("CASH")), 1e-9)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.soldAmount.WithLabelValues("CARD")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("/api/checkout", "POST", "201", 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `pos_http_requests_total{code="201",method="POST",route="/api/checkout"} 1`))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCheckout(sales.ResultOK, entity.PaymentCash, decimal.NewFromInt(1))
		m.ObserveRequest("/", "GET", "200", time.Millisecond)
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 503, rec.Code)
}
