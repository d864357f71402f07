package server

import "time"

// HTTP error messages for middleware responses
const (
	ErrMsgUnauthorized    = "Unauthorized"
	ErrMsgTooManyRequests = "Too Many Requests"
	ErrMsgRequestTooLarge = "Request Entity Too Large"
)

// Security alert message templates
const (
	SecurityAlertFailedAuth = "⚠️ SECURITY ALERT: Multiple failed authentication attempts"
	SecurityAlertHighRate   = "⚠️ SECURITY ALERT: Blocking high request rate"
	SecurityAlertAuthLocked = "⚠️ SECURITY ALERT: Admin login locked for client"
)

// Log messages for server lifecycle and request handling
const (
	LogMsgServerStarting   = "Server starting"
	LogMsgRequestStarted   = "Request started"
	LogMsgRequestCompleted = "Request completed"
	LogMsgRequestHeaders   = "Request headers"
	LogMsgAuthFailed       = "Authentication failed"
	LogMsgBadTrustedProxy  = "Ignoring unparseable TRUSTED_PROXIES entry"
)

// HTTP header names
const (
	HeaderAuthorization   = "Authorization"
	HeaderStripeSignature = "Stripe-Signature"
	HeaderForwardedFor    = "X-Forwarded-For"
	HeaderContentType     = "X-Content-Type-Options"
	HeaderFrameOptions    = "X-Frame-Options"
	HeaderXSSProtection   = "X-XSS-Protection"
	HeaderReferrerPolicy  = "Referrer-Policy"
	HeaderWWWAuthenticate = "WWW-Authenticate"
	HeaderRequestID       = "X-Request-ID"
)

// Security header values
const (
	HeaderValueNoSniff              = "nosniff"
	HeaderValueSameOrigin           = "SAMEORIGIN"
	HeaderValueXSSBlock             = "1; mode=block"
	HeaderValueReferrerStrictOrigin = "strict-origin-when-cross-origin"
	HeaderValueBasicRealm           = `Basic realm="launchpass-admin", charset="UTF-8"`
)

// Rate and auth monitoring thresholds
const (
	detectorWindow         = 5 * time.Minute
	maxTrackedClients      = 10000
	failedAuthAlertCount   = 5
	failedAuthLockoutCount = 20
	maxRequestsPerWindow   = 1000
	highRateLogEvery       = 100
	maxRequestBodyBytes    = 1 << 20
	maxRequestIDLen        = 128
	readHeaderTimeout      = 5 * time.Second
	bcryptHashPrefix       = "$2"
)

// securityHeaders are set on every response
var securityHeaders = [][2]string{
	{HeaderContentType, HeaderValueNoSniff},
	{HeaderFrameOptions, HeaderValueSameOrigin},
	{HeaderXSSProtection, HeaderValueXSSBlock},
	{HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin},
}

// Paths that are not request-logged
var quietPaths = []string{
	"/healthz",
	"/health",
	"/readyz",
	"/metrics",
}

// sensitiveHeaders are redacted from debug header logs
var sensitiveHeaders = []string{
	HeaderAuthorization,
	HeaderStripeSignature,
}

// Header redaction marker
const (
	RedactedValue = "[REDACTED]"
)
