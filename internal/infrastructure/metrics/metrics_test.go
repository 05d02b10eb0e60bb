package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greengrocer-ims/internal/application/live"
)

func TestMiddleware_CuentaPorPatronDeRuta(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/products/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/products/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/products/:id", "GET", "200")))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "greengrocer_http_requests_total"))
}

func TestMiddleware_ErrorFiber(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.ErrTeapot })

	_, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/boom", "GET", "418")))
}

func TestSubscriptionGaugeYErrores(t *testing.T) {
	m := New()
	m.SubscriptionOpened("products")
	m.SubscriptionOpened("products")
	m.SubscriptionClosed("products")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.liveSubscriptions.WithLabelValues("products")))

	bus := live.NewErrorBus()
	ch, unsubscribe := bus.Subscribe(4)
	bus.Publish(&live.SubscriptionError{Operation: "list", Path: "users/u1/receipts"})
	unsubscribe()
	m.ObserveErrors(ch)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.subscriptionErrors.WithLabelValues("list", "receipts")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SubscriptionOpened("x")
		m.StockOperation("receipt", "validate")
	})
}
