package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/service"
)

func TestMetricsHandlerHealth(t *testing.T) {
	h := NewMetricsHandler(nil, nil)

	c, rec := newTestContext(http.MethodGet, "/health", "")
	h.Health(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(ctx context.Context) error { return nil },
	})
	c, rec := newTestContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok"}}`, rec.Body.String())

	h = NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})
	c, rec = newTestContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","redis":"connection refused"}}`, rec.Body.String())
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordWebhookOutcome("processed")
	h := NewMetricsHandler(metrics, nil)

	c, rec := newTestContext(http.MethodGet, "/metrics", "")
	h.Prometheus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `webhook_events_total{outcome="processed"} 1`)
}
