// Package observability agrupa las métricas Prometheus de la API.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

var _ sales.CheckoutMetrics = (*Metrics)(nil)

// Metrics registry propio con las métricas HTTP y de caja.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	checkoutsTotal  *prometheus.CounterVec
	soldAmount      *prometheus.CounterVec
}

// NewMetrics inicializa el registry y registra todas las métricas.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_http_requests_total",
		Help: "Peticiones HTTP por ruta, método y código de estado.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP por ruta.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkouts_total",
		Help: "Cobros por resultado y medio de pago.",
	}, []string{"result", "payment_method"})
	sold := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sold_amount_total",
		Help: "Monto vendido (total de órdenes confirmadas) por medio de pago.",
	}, []string{"payment_method"})
	registry.MustRegister(
		requests, duration, checkouts, sold,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		checkoutsTotal:  checkouts,
		soldAmount:      sold,
	}
}

// Handler devuelve el http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer expone el registry para métricas adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// ObserveRequest registra una petición HTTP terminada.
func (m *Metrics) ObserveRequest(route, method, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, code).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveCheckout cuenta el cobro y, si fue confirmado, suma el total vendido.
func (m *Metrics) ObserveCheckout(result string, method entity.PaymentMethod, total decimal.Decimal) {
	if m == nil {
		return
	}
	label := string(method)
	if label == "" {
		label = "unknown"
	}
	m.checkoutsTotal.WithLabelValues(result, label).Inc()
	if result == sales.ResultOK && total.IsPositive() {
		m.soldAmount.WithLabelValues(label).Add(total.InexactFloat64())
	}
}
