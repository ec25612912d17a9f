package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *MetricsService, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue metrics
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetricsServiceRecordsBoardActivity(t *testing.T) {
	m := NewMetricsService()
	m.RecordBoardMutation("like", true)
	m.RecordBoardMutation("like", true)
	m.RecordBoardMutation("like", false)
	m.RecordReportJob("FINISHED")
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/feed", http.StatusOK, 5*time.Millisecond)
	m.ObserveStoreOp("load", "announcements", time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m, "board_mutations_total", map[string]string{"operation": "like", "applied": "true"}))
	assert.Equal(t, 1.0, counterValue(t, m, "board_mutations_total", map[string]string{"operation": "like", "applied": "false"}))
	assert.Equal(t, 1.0, counterValue(t, m, "attendance_report_jobs_total", map[string]string{"status": "FINISHED"}))
	assert.Equal(t, 1.0, counterValue(t, m, "http_requests_total", map[string]string{"method": "GET", "path": "/api/v1/feed", "status": "200"}))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "board_store_duration_seconds")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordBoardMutation("like", true)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
		m.ObserveStoreOp("save", "alerts", time.Millisecond)
		m.RecordReportJob("FAILED")
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}
