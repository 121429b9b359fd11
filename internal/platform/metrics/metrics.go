package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the tracing engine.
type Metrics struct {
	ScreensSubmitted  prometheus.Counter
	NotificationsSent *prometheus.CounterVec
	SMSSendFailures   prometheus.Counter
	DispatchDuration  prometheus.Histogram
	RequestLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ScreensSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ember_screens_submitted_total",
			Help: "Total number of health screens submitted",
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ember_exposure_notifications_total",
			Help: "Exposure notifications recorded, labeled by delivery channel",
		}, []string{"channel"}),
		SMSSendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ember_sms_send_failures_total",
			Help: "SMS gateway sends that failed or timed out",
		}),
		DispatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ember_dispatch_duration_seconds",
			Help:    "Wall time of a full exposure dispatch, all partners joined",
			Buckets: prometheus.DefBuckets,
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ember_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveDispatch records a completed dispatch run.
func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.DispatchDuration.Observe(d.Seconds())
}

// IncSMSFailure counts one failed or timed-out gateway send.
func (m *Metrics) IncSMSFailure() {
	if m == nil {
		return
	}
	m.SMSSendFailures.Inc()
}

// IncScreenSubmitted counts one persisted health screen.
func (m *Metrics) IncScreenSubmitted() {
	if m == nil {
		return
	}
	m.ScreensSubmitted.Inc()
}

// ObserveRequest records one HTTP request's latency by route and status.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route, status).Observe(d.Seconds())
}

// IncNotification counts one recorded notification for the given channel.
func (m *Metrics) IncNotification(channel string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(channel).Inc()
}
