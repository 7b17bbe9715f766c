package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registration outcomes.
const (
	ResultOK               = "ok"
	ResultInvalid          = "invalid"
	ResultTemplateNotFound = "template_not_found"
	ResultRenderError      = "render_error"
	ResultStorageError     = "storage_error"
)

// Archive job outcomes besides ResultOK and ResultStorageError.
const (
	ResultSkipped = "skipped"
	ResultMissing = "missing"
)

// Metrics provides observability for guest registration and document archiving.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registrations      *prometheus.CounterVec
	RenderDuration     prometheus.Histogram
	DocumentBytes      prometheus.Histogram
	DirectoryFailures  prometheus.Counter
	ArchiveJobs        *prometheus.CounterVec
	ArchiveUploadBytes prometheus.Counter
}

// New registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guestdesk_registrations_total",
			Help: "Guest registrations by outcome",
		}, []string{"result"}),
		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "guestdesk_render_duration_seconds",
			Help:    "Duration of PDF rendering",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		DocumentBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "guestdesk_document_bytes",
			Help:    "Size of rendered guest documents",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 8),
		}),
		DirectoryFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "guestdesk_company_directory_failures_total",
			Help: "Registrations whose company directory update failed",
		}),
		ArchiveJobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guestdesk_archive_jobs_total",
			Help: "Document archive jobs by outcome",
		}, []string{"result"}),
		ArchiveUploadBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "guestdesk_archive_upload_bytes_total",
			Help: "Bytes uploaded to the document archive",
		}),
	}
}

// IncrementRegistration records a registration outcome.
func (m *Metrics) IncrementRegistration(result string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(result).Inc()
}

// ObserveRender records a render that started at start and produced size bytes.
func (m *Metrics) ObserveRender(start time.Time, size int) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(time.Since(start).Seconds())
	if size > 0 {
		m.DocumentBytes.Observe(float64(size))
	}
}

// IncrementDirectoryFailure records a company directory failure after a stored registration.
func (m *Metrics) IncrementDirectoryFailure() {
	if m == nil {
		return
	}
	m.DirectoryFailures.Inc()
}

// IncrementArchiveJob records an archive job outcome and, on success, its size.
func (m *Metrics) IncrementArchiveJob(result string, size int) {
	if m == nil {
		return
	}
	m.ArchiveJobs.WithLabelValues(result).Inc()
	if result == ResultOK && size > 0 {
		m.ArchiveUploadBytes.Add(float64(size))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
