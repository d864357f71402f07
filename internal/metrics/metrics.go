package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Reconciliation Metrics
var (
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameWebhookEvents,
			Help: HelpTextWebhookEvents,
		},
		[]string{LabelType, LabelOutcome},
	)

	Invites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameInvites,
			Help: HelpTextInvites,
		},
		[]string{LabelStatus},
	)

	CreatorsOnboarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCreatorsOnboarded,
			Help: HelpTextCreatorsOnboarded,
		},
		[]string{LabelNew},
	)
)

// External Call Metrics
var (
	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameExternalCallDuration,
			Help:    HelpTextExternalCallDuration,
			Buckets: ExternalLatencyBuckets,
		},
		[]string{LabelService, LabelOperation},
	)

	ExternalCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameExternalCallFailures,
			Help: HelpTextExternalCallFailures,
		},
		[]string{LabelService, LabelOperation},
	)
)

// ObserveExternalCall records one outbound call; use as
// defer metrics.ObserveExternalCall(service, op, time.Now(), &err)
func ObserveExternalCall(service, operation string, start time.Time, err *error) {
	ExternalCallDuration.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
	if err != nil && *err != nil {
		ExternalCallFailures.WithLabelValues(service, operation).Inc()
	}
}

// RecordWebhookEvent counts a handled webhook delivery
func RecordWebhookEvent(eventType, outcome string) {
	WebhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// RecordInvite counts one invitation result
func RecordInvite(status string) {
	Invites.WithLabelValues(status).Inc()
}

// RecordOnboard counts an onboarding call
func RecordOnboard(newAccount bool) {
	CreatorsOnboarded.WithLabelValues(strconv.FormatBool(newAccount)).Inc()
}
