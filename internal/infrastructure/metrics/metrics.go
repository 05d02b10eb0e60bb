// Package metrics expone métricas Prometheus del API: peticiones HTTP,
// suscripciones en vivo abiertas y errores de suscripción.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/greengrocer-ims/internal/application/live"
)

const namespace = "greengrocer"

// Metrics registro propio (no el global) con las métricas del proceso.
type Metrics struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	liveSubscriptions  *prometheus.GaugeVec
	subscriptionErrors *prometheus.CounterVec
	stockMovements     *prometheus.CounterVec
}

// New inicializa el registro y las métricas base.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por ruta, método y código.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP por ruta.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		liveSubscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscriptions",
			Help:      "Suscripciones en vivo abiertas por colección.",
		}, []string{"collection"}),
		subscriptionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_subscription_errors_total",
			Help:      "Errores de suscripción publicados en el bus.",
		}, []string{"operation", "collection"}),
		stockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_operations_total",
			Help:      "Acciones de flujo aplicadas sobre operaciones de inventario.",
		}, []string{"kind", "action"}),
	}
	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.liveSubscriptions,
		m.subscriptionErrors,
		m.stockMovements,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler handler de /metrics para fiber.
func (m *Metrics) Handler() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusServiceUnavailable) }
	}
	return adaptor.HTTPHandler(m.handler)
}

// Middleware registra contador y duración por petición. La ruta es el patrón
// registrado (/api/products/:id), no la URL concreta.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < http.StatusBadRequest {
				status = http.StatusInternalServerError
			}
		}
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.requestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

// SubscriptionOpened / SubscriptionClosed mantienen el gauge de suscripciones.
func (m *Metrics) SubscriptionOpened(collection string) {
	if m != nil {
		m.liveSubscriptions.WithLabelValues(collection).Inc()
	}
}

func (m *Metrics) SubscriptionClosed(collection string) {
	if m != nil {
		m.liveSubscriptions.WithLabelValues(collection).Dec()
	}
}

// StockOperation cuenta una acción aplicada (kind: receipt, delivery, transfer, adjustment).
func (m *Metrics) StockOperation(kind, action string) {
	if m != nil {
		m.stockMovements.WithLabelValues(kind, action).Inc()
	}
}

// ObserveErrors consume el bus de errores hasta que se cierre el canal.
func (m *Metrics) ObserveErrors(errs <-chan *live.SubscriptionError) {
	for e := range errs {
		if m != nil {
			// Solo el nombre de la colección: la ruta completa incluye el uid.
			m.subscriptionErrors.WithLabelValues(e.Operation, e.Path[strings.LastIndex(e.Path, "/")+1:]).Inc()
		}
	}
}

// Registerer expone el registro para métricas adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}
