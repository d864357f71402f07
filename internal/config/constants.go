package config

import "time"

// Defaults
const (
	DefaultPort                = "3001"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
	DefaultEnvironment         = "dev"
	DefaultVersion             = "dev"
	DefaultServiceName         = "launchpass"
	DefaultWorksheet           = "Creators"
	DefaultIdentityServer      = "sydent.filament.dm"
	DefaultFeePercent          = 10
	DefaultExternalCallTimeout = 10 * time.Second
	DefaultDBMaxConns          = 10
	DefaultDBMaxConnIdleTime   = 5 * time.Minute
	DefaultDBMaxConnLifetime   = 30 * time.Minute
)

// Record store backends
const (
	StoreBackendSheets   = "sheets"
	StoreBackendPostgres = "postgres"
)

// Public onboarding redirect paths, shared with the router
const (
	PathConnectReturn  = "/connect/return"
	PathConnectRefresh = "/connect/refresh"
)
