package alert

import "time"

const (
	webhookPathPrefix = "/webhooks/"
	defaultTimeout    = 5 * time.Second

	embedColorPartial = 0xF1C40F
	embedColorFailed  = 0xE74C3C
	maxEmbedFields    = 25
	maxFieldValue     = 1024
)

// Message text
const (
	titlePartial  = "Some chat invitations failed"
	titleAllFail  = "All chat invitations failed"
	fieldAccount  = "Account"
	fieldCreator  = "Creator"
	fieldCustomer = "Customer"
	footerText    = "launchpass"
)

// Error Messages
const (
	ErrMsgInvalidWebhookURL = "invalid discord webhook url"
	ErrMsgCreateSession     = "failed to create discord session"
)

// Log Messages
const (
	LogMsgAlertSent   = "Sent invite failure alert"
	LogMsgAlertFailed = "Failed to send invite failure alert"
)
