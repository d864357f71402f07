package postgres

// SQLSTATE raised when the provider_account_id unique index rejects a write
const sqlStateUniqueViolation = "23505"

// Error messages
const (
	ErrMsgGet            = "creator lookup failed"
	ErrMsgFindByAccount  = "creator lookup by provider account failed"
	ErrMsgList           = "creator listing failed"
	ErrMsgUpsert         = "creator upsert failed"
	ErrMsgPing           = "creator store ping failed"
	ErrMsgAccountPinned  = "provider account id is already set"
	ErrMsgAccountClaimed = "provider account id belongs to another creator"
)
