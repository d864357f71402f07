package sheets

import "time"

// Column headers written by the setup command
const (
	ColCreatorID          = "creator_id"
	ColProviderAccountID  = "stripe_account_id"
	ColEmail              = "email"
	ColDisplayName        = "name"
	ColOnboardingComplete = "onboarding_complete"
	ColChargesEnabled     = "charges_enabled"
	ColChatRoomIDs        = "loops"
	ColCreatedAt          = "created_at"
	ColUpdatedAt          = "updated_at"
)

// Headers is the canonical column order of a new worksheet
var Headers = []string{
	ColCreatorID,
	ColProviderAccountID,
	ColEmail,
	ColDisplayName,
	ColOnboardingComplete,
	ColChargesEnabled,
	ColChatRoomIDs,
	ColCreatedAt,
	ColUpdatedAt,
}

// headerAliases maps alternative header names onto canonical columns
var headerAliases = map[string]string{
	"provider_account_id": ColProviderAccountID,
	"account_id":          ColProviderAccountID,
	"display_name":        ColDisplayName,
	"chat_room_ids":       ColChatRoomIDs,
	"rooms":               ColChatRoomIDs,
}

// DefaultWorksheet is the worksheet title used when none is configured
const DefaultWorksheet = "Creators"

// Cell values
const (
	cellTrue  = "TRUE"
	cellFalse = "FALSE"
)

// Write options
const (
	valueInputRaw      = "RAW"
	insertDataRows     = "INSERT_ROWS"
	newSheetRows       = 100
	newSheetColumns    = 10
	defaultCallTimeout = 10 * time.Second
)

// timestampLayouts are tried in order when reading timestamps back.
// Rows written by older tooling carry a naive UTC isoformat value.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Error Messages
const (
	ErrMsgReadFailed       = "failed to read worksheet"
	ErrMsgWriteFailed      = "failed to write row"
	ErrMsgAppendFailed     = "failed to append row"
	ErrMsgPingFailed       = "failed to reach spreadsheet"
	ErrMsgMissingColumn    = "worksheet header is missing column"
	ErrMsgCreateClient     = "failed to create sheets client"
	ErrMsgSetupFailed      = "failed to set up worksheet"
	ErrMsgSpreadsheetIDReq = "spreadsheet id is required"
)

// Log Messages
const (
	LogMsgBadTimestamp     = "Unparseable timestamp in worksheet"
	LogMsgWorksheetCreated = "Created worksheet"
	LogMsgWorksheetReset   = "Cleared worksheet"
	LogMsgWorksheetExists  = "Worksheet already exists"
	LogMsgHeaderWritten    = "Wrote worksheet header"
	LogMsgWroteHeaderOnUse = "Worksheet was empty, wrote header before first row"
)
