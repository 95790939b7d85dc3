package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"plandash/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tracingConfig() *OTelConfig {
	return OTelConfigFrom(config.TelemetryConfig{
		Environment:    "test",
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		SampleRatio:    1.0,
	})
}

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(tracingConfig(), testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitialization_Defaults(t *testing.T) {
	cfg := DefaultOTelConfig()
	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.False(t, cfg.EnableTracing)
	assert.True(t, cfg.EnableMetrics)

	providers, err := InitializeOTel(nil, testLogger())
	require.NoError(t, err)
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelInitialization_UnsupportedExporter(t *testing.T) {
	cfg := tracingConfig()
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, testLogger())
	assert.Error(t, err)
}

// TestRecordError marks the active span as failed
func TestRecordError(t *testing.T) {
	providers, err := InitializeOTel(tracingConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-operation")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.IsRecording())
	RecordError(ctx, errors.New("boom"))
}

func TestDashboardMetrics_Scrape(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordWorkbookLoad(ctx, 20*time.Millisecond, 2, nil)
	metrics.RecordCacheLookup(ctx, true)
	metrics.RecordCacheLookup(ctx, false)
	metrics.RecordChart(ctx, "inputs", "stock")
	metrics.RecordExport(ctx, "costs", "xlsx")

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "workbook_loads_total")
	assert.Contains(t, body, "workbook_sheet_warnings_total")
	assert.Contains(t, body, "workbook_cache_hits_total")
	assert.Contains(t, body, "charts_rendered_total")
	assert.Contains(t, body, "exports_generated_total")
}

func TestDashboardMetrics_NilSafe(t *testing.T) {
	var m *DashboardMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordWorkbookLoad(ctx, time.Second, 1, errors.New("x"))
		m.RecordCacheLookup(ctx, true)
		m.RecordChart(ctx, "a", "b")
		m.RecordExport(ctx, "a", "csv")
	})
}
