package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAuth(t *testing.T) {
	m := New()

	m.ObserveAuth("student", "login", nil)
	m.ObserveAuth("student", "login", errors.New("bad"))
	m.ObserveAuth("student", "login", errors.New("bad"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("student", "login", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("student", "login", "failure")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAuth("admin", "login", nil)
		m.ObserveJob("promotion", nil)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveJob("promotion", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `academia_job_runs_total{job="promotion",outcome="success"} 1`))
}
