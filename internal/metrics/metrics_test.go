package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonathan/fieldsync/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDiagnosis(t *testing.T) {
	m := New()

	m.ObserveDiagnosis(types.RecommendTryDIY, 2, 3*time.Millisecond)
	m.ObserveDiagnosis(types.RecommendScheduleTechnician, 0, time.Millisecond)
	m.ObserveDiagnosis(types.RecommendScheduleTechnician, 1, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DiagnosesTotal.WithLabelValues("try_diy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DiagnosesTotal.WithLabelValues("schedule_technician")))
}

func TestFailureCounters(t *testing.T) {
	m := New()

	m.ErrorCodeLookupFailed()
	m.ErrorCodeLookupFailed()
	m.CatalogFetchFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ErrorCodeLookupFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogFetchFailures))
}

func TestObserveHTTPAndRateLimited(t *testing.T) {
	m := New()

	m.ObserveHTTP(http.MethodPost, "/api/diagnose", http.StatusOK, 10*time.Millisecond)
	m.RateLimited("/api/diagnose")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/diagnose", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal.WithLabelValues("/api/diagnose")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveDiagnosis(types.RecommendTryDIY, 1, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "fieldsync_diagnoses_total")
	assert.Contains(t, body, `recommendation="try_diy"`)
	assert.Contains(t, body, "go_goroutines")
}
