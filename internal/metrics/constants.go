package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"

	MetricNameWebhookEvents        = "webhook_events_total"
	MetricNameInvites              = "chat_invites_total"
	MetricNameCreatorsOnboarded    = "creators_onboarded_total"
	MetricNameExternalCallDuration = "external_call_duration_seconds"
	MetricNameExternalCallFailures = "external_call_failures_total"
)

// Metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"

	HelpTextWebhookEvents        = "Payment provider webhook events by type and outcome"
	HelpTextInvites              = "Chat room invitations by status"
	HelpTextCreatorsOnboarded    = "Onboarding calls by whether a new provider account was created"
	HelpTextExternalCallDuration = "Latency of outbound calls to external services in seconds"
	HelpTextExternalCallFailures = "Failed outbound calls to external services"
)

// Label names
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelOutcome   = "outcome"
	LabelService   = "service"
	LabelOperation = "operation"
	LabelNew       = "new_account"
)

// External services
const (
	ServicePaymentProvider = "payments"
	ServiceChat            = "chat"
	ServiceRecordStore     = "store"
	ServiceAlerts          = "alerts"
)

// unmatchedRoute labels requests that did not match a route, keeping path cardinality bounded
const unmatchedRoute = "unmatched"

// HTTPLatencyBuckets spans 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ExternalLatencyBuckets spans 10ms to the default 10s call timeout and beyond
var ExternalLatencyBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 15}
