package database

import "time"

// Pool sizing floors applied to the creator store
const (
	minPoolConns          = 2
	defaultHealthInterval = 30 * time.Second
)

// Error messages
const (
	ErrMsgBadDSN       = "invalid postgres connection string"
	ErrMsgPoolCreate   = "could not create postgres pool"
	ErrMsgPoolPing     = "postgres did not answer ping"
	ErrMsgMigrate      = "schema migration failed"
	ErrMsgSchemaStatus = "could not read schema status"
)

// Log messages
const (
	LogMsgPoolReady        = "Creator store pool ready"
	LogMsgMigrationApplied = "Schema migration applied"
)
