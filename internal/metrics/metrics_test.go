package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	m.Observe("column", 12, 250*time.Millisecond)
	m.Observe("column", 3, time.Second)
	m.Observe("bank:HDFC", 40, time.Second)
	m.Failed("extract")
	m.RateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Conversions.WithLabelValues("column")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conversions.WithLabelValues("bank:HDFC")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("extract")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe("none", 0, time.Millisecond)
		m.Failed("extract")
		m.RateLimited()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Observe("fallback", 5, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `statement_extractor_conversions_total{strategy="fallback"} 1`)
}
