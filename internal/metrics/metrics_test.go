package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementRegistration(ResultOK)
	m.IncrementRegistration(ResultOK)
	m.IncrementRegistration(ResultInvalid)
	m.IncrementDirectoryFailure()
	m.IncrementArchiveJob(ResultOK, 2048)
	m.IncrementArchiveJob(ResultStorageError, 0)
	m.ObserveRender(time.Now().Add(-10*time.Millisecond), 4096)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Registrations.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues(ResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryFailures))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.ArchiveUploadBytes))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RenderDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementRegistration(ResultOK)
		m.ObserveRender(time.Now(), 1)
		m.IncrementDirectoryFailure()
		m.IncrementArchiveJob(ResultOK, 1)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.IncrementRegistration(ResultOK)

	r := gin.New()
	r.GET("/metrics", Handler(reg))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `guestdesk_registrations_total{result="ok"} 1`)
}
