package bootstrap

import "time"

// Session log files, one per process start
const (
	logDirPerm        = 0o755
	logFilePerm       = 0o644
	logFilePrefix     = "launchpass_"
	logFileSuffix     = ".log"
	logFileTimeLayout = "2006-01-02_15-04-05"
	logFilesKept      = 9
)

// ShutdownTimeout bounds the shutdown steps; StartupTimeout bounds store setup and the chat login
const (
	ShutdownTimeout = 15 * time.Second
	StartupTimeout  = 30 * time.Second
)

// Log messages
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingService     = "Starting LaunchPass"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgEnvWarning          = "Environment warning"
	LogMsgStoreReady          = "Record store ready"
	LogMsgMigrationsApplied   = "Database schema migrated"
	LogMsgChatLoginFailed     = "Chat login failed, will retry on first invite"
	LogMsgAlertsDisabled      = "Discord alert webhook not configured, alerts disabled"
	LogMsgShutdownSignal      = "Shutdown signal received"
	LogMsgShuttingDownServer  = "Shutting down server..."
	LogMsgServerStopped       = "Server stopped"
	LogMsgShutdownStepFailed  = "Shutdown step failed"
	LogMsgShutdownStepDone    = "Shutdown step finished"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
)

// Error messages
const (
	ErrMsgFailedCreateLogsDir = "failed to create logs directory"
	ErrMsgFailedOpenLogFile   = "failed to open log file"
	ErrMsgLoadConfig          = "failed to load configuration"
	ErrMsgValidateEnv         = "environment validation failed"
	ErrMsgOpenStore           = "failed to open record store"
	ErrMsgMigrate             = "failed to migrate database"
	ErrMsgPaymentsClient      = "failed to create payment provider client"
	ErrMsgWebhookVerifier     = "failed to create webhook verifier"
	ErrMsgChatClient          = "failed to create chat client"
	ErrMsgAlertNotifier       = "failed to create alert notifier"
	ErrMsgServerFailed        = "server failed"
)
