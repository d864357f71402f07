package logger

// Accepted LOG_LEVEL values; "warning" is an alias of "warn"
const (
	levelDebug   = "debug"
	levelWarn    = "warn"
	levelWarning = "warning"
	levelError   = "error"
	LevelInfo    = "info"
)

// Accepted LOG_FORMAT values
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Fallbacks used before configuration is loaded
const (
	fallbackServiceName = "launchpass"
	fallbackVersion     = "dev"
	fallbackEnvironment = "dev"
)

// Attribute keys shared across packages so one creator or event can be followed through the logs
const (
	KeyService     = "service"
	KeyVersion     = "version"
	KeyEnvironment = "environment"
	KeyRequestID   = "request_id"
	KeyCreatorID   = "creator_id"
	KeyAccountID   = "account_id"
	KeyEventID     = "event_id"
	KeyEventType   = "event_type"
	KeySessionID   = "session_id"
	KeyRoomID      = "room_id"
)

// maxContextAttrs caps the key/value pairs a request can pile onto its context
const maxContextAttrs = 32
