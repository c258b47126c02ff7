package obs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDPropagatesHeader(t *testing.T) {
	r := gin.New()
	r.Use(Middleware{}.RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	r := gin.New()
	r.Use(Middleware{}.RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLoggerMiddlewareWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Middleware{Logger: NewLogger(LogOptions{Output: &buf})}.LoggerMiddleware())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("kaput"))
		c.Status(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	line := buf.String()
	assert.Contains(t, line, `"level":"ERROR"`)
	assert.Contains(t, line, `"path":"/boom"`)
	assert.Contains(t, line, "kaput")
}

func TestReadyzReportsFailingCheck(t *testing.T) {
	h := HealthHandlers{Checks: map[string]Check{
		"store":  func(context.Context) error { return nil },
		"broker": func(context.Context) error { return errors.New("down") },
	}}
	r := gin.New()
	r.GET("/readyz", h.Readyz)
	r.GET("/livez", h.Livez)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"broker":"down"`)
	assert.Contains(t, w.Body.String(), `"store":"up"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsCountRequestsByRoute(t *testing.T) {
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/listings/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/listings/"+id, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/listings/:id", "200")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "dwelling_http_requests_total"))
}

func TestCommandObserverClassifiesErrors(t *testing.T) {
	m := NewMetrics()
	observe := m.CommandObserver(func(err error) string { return "conflict" })

	observe(context.Background(), "reservations.create", 0, nil)
	observe(context.Background(), "reservations.create", 0, errors.New("overlap"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("reservations.create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("reservations.create", "conflict")))
}

func TestObservePublish(t *testing.T) {
	m := NewMetrics()
	m.ObservePublish("reservation.events.v1", nil)
	m.ObservePublish("reservation.events.v1", errors.New("down"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("reservation.events.v1", "failed")))
}

func TestInitTracingDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "", "dwelling")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracingMiddlewareContinuesTraceparent(t *testing.T) {
	r := gin.New()
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	r.Use(TracingMiddleware(tp))
	headers := map[string]string{}
	r.GET("/x", func(c *gin.Context) {
		InjectHeaders(c.Request.Context(), headers)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, headers["traceparent"], "4bf92f3577b34da6a3ce929d0e0e4736")
}

func TestOTLPHost(t *testing.T) {
	assert.Equal(t, "collector:4318", otlpHost("http://collector"))
	assert.Equal(t, "collector:4319", otlpHost("http://collector:4319"))
	assert.Equal(t, "collector:4318", otlpHost("collector:4318"))
	assert.Empty(t, otlpHost(" "))
}

func TestNewLoggerLevelAndService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogOptions{Level: "warn", Service: "dwelling", Output: &buf})
	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, `"service":"dwelling"`)

	assert.Equal(t, slog.LevelDebug, parseLevel("", true))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus", false))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR", false))
}
