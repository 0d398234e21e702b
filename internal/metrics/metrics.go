package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "directory_"

	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics groups the directory collectors. A nil *Metrics is a no-op.
type Metrics struct {
	remoteRequests     *prometheus.CounterVec
	remoteLatency      *prometheus.HistogramVec
	notifications      *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
}

// New builds the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		remoteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "remote_requests_total",
				Help: "Record store requests by operation and result",
			},
			[]string{"op", "result"},
		),
		remoteLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "remote_request_seconds",
				Help:    "Record store request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "User notifications emitted by kind",
			},
			[]string{"kind"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "validation_failures_total",
				Help: "Rejected submissions by field and rule",
			},
			[]string{"field", "code"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.remoteRequests, m.remoteLatency, m.notifications, m.validationFailures} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// ObserveRemote records one record store round trip.
func (m *Metrics) ObserveRemote(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.remoteRequests.WithLabelValues(op, result).Inc()
	m.remoteLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// IncNotification counts an emitted notification.
func (m *Metrics) IncNotification(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

// IncValidationFailure counts a rejected field.
func (m *Metrics) IncValidationFailure(field, code string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(field, code).Inc()
}
