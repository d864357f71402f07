package handler

// Generic HTTP error messages for client responses.
// These messages do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgRequestTooLarge       = "Request body too large"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"

	// Webhook error messages
	ErrMsgInvalidSignature  = "Invalid webhook signature"
	ErrMsgUnreadableBody    = "Could not read request body"
	ErrMsgWebhookFailed     = "Webhook processing failed"
	ErrMsgAllInvitesFailed  = "All chat invitations failed"
	ErrMsgMissingEventData  = "Event payload is missing its object"
	ErrMsgReadinessStoreErr = "record store unreachable"
)

// Success messages for API responses
const (
	MsgOnboardingComplete   = "Onboarding complete! You can now accept payments."
	MsgOnboardingIncomplete = "Please complete your onboarding to start accepting payments."
	MsgNoCustomerEmail      = "No usable customer email, nothing to invite"
	MsgNoRooms              = "No chat rooms configured, nothing to invite"
	MsgEventIgnored         = "Event type not handled"
	MsgUnknownAccount       = "Unknown account, nothing to update"
	MsgSubscriptionNoop     = "Subscription cancellation recorded, no chat changes made"
	MsgSomeInvitesFailed    = "Some chat invitations failed"
)

// Log Messages
const (
	LogMsgEncodeFailed      = "Failed to encode JSON response"
	LogMsgWriteFailed       = "Failed to write response buffer"
	LogMsgWebhookRejected   = "Rejected webhook with invalid signature"
	LogMsgWebhookReceived   = "Received webhook event"
	LogMsgWebhookIgnored    = "Ignoring unhandled webhook event type"
	LogMsgWebhookFailed     = "Webhook reconciliation failed"
	LogMsgInvitesFailed     = "Checkout invitations failed"
	LogMsgReadinessFailed   = "Readiness check failed"
	LogMsgOnboardingStarted = "Onboarding link issued"
	LogMsgDecodeFailed      = "Failed to decode request body"
	LogMsgTrailingBody      = "Request body holds more than one JSON document"
	LogMsgValidationFailed  = "Request failed validation"
	LogMsgMissingQuery      = "Missing required query parameter"
	LogMsgServiceFailed     = "Service call failed"
	LogMsgServiceRejected   = "Service call rejected"
)
