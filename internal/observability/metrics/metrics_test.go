package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/metrics"
)

func newProvider(t *testing.T, enabled bool) *metrics.Provider {
	t.Helper()

	p, err := metrics.NewProvider(context.Background(), metrics.Config{
		ServiceName: "reminder-scheduler",
		Environment: "test",
		Enabled:     enabled,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	return p
}

func scrape(t *testing.T, p *metrics.Provider) string {
	t.Helper()

	handler := p.Handler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	return string(body)
}

func TestSchedulerMetricsSuccess(t *testing.T) {
	p := newProvider(t, true)
	ctx := context.Background()

	m, err := metrics.NewSchedulerMetrics(p.Meter())
	require.NoError(t, err)

	m.RecordPass(ctx, "tiered", 3, 1, 20*time.Millisecond)
	m.RecordPassAborted(ctx, "due")
	m.RecordDispatch(ctx, "1-hour", metrics.OutcomeSent)

	body := scrape(t, p)

	assert.Contains(t, body, "scheduler_passes")
	assert.Contains(t, body, `result="partial"`)
	assert.Contains(t, body, `result="aborted"`)
	assert.Contains(t, body, "scheduler_dispatches")
	assert.Contains(t, body, `tier="1-hour"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestHTTPMetricsSuccess(t *testing.T) {
	p := newProvider(t, true)

	m, err := metrics.NewHTTPMetrics(p.Meter())
	require.NoError(t, err)

	m.Record(context.Background(), http.MethodGet, "/api/v1/reminders/:id", http.StatusNotFound, 5*time.Millisecond)

	body := scrape(t, p)

	assert.Contains(t, body, "http_server_requests")
	assert.Contains(t, body, `http_route="/api/v1/reminders/:id"`)
}

func TestDisabledProviderSuccess(t *testing.T) {
	p := newProvider(t, false)

	assert.Nil(t, p.Handler())

	var m *metrics.SchedulerMetrics

	assert.NotPanics(t, func() {
		m.RecordPass(context.Background(), "tiered", 1, 0, time.Second)
		m.RecordDispatch(context.Background(), "immediate", metrics.OutcomeError)
	})
}
