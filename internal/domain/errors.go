package domain

import "errors"

// Messages behind the sentinel errors; tests match on these
const (
	ErrMsgCreatorNotFound       = "creator not found"
	ErrMsgStoreUnavailable      = "record store unavailable"
	ErrMsgMalformedRecord       = "malformed creator record"
	ErrMsgAccountIDConflict     = "provider account id conflict"
	ErrMsgProviderUnavailable   = "payment provider unavailable"
	ErrMsgChatUnavailable       = "chat service unavailable"
	ErrMsgAuthenticationFailure = "authentication failure"
	ErrMsgPartialInviteFailure  = "one or more chat invitations failed"
	ErrMsgChargesNotEnabled     = "creator has not completed onboarding"
	ErrMsgInvalidInput          = "invalid input"
)

// Sentinels shared by every layer. Wrap with fmt.Errorf("%w: detail", ...);
// the text after ErrInvalidInput is shown to API clients.
var (
	ErrCreatorNotFound   = errors.New(ErrMsgCreatorNotFound)
	ErrAccountIDConflict = errors.New(ErrMsgAccountIDConflict)
	ErrChargesNotEnabled = errors.New(ErrMsgChargesNotEnabled)
	ErrInvalidInput      = errors.New(ErrMsgInvalidInput)

	// Transport, auth or malformed-response failures of a dependency
	ErrStoreUnavailable    = errors.New(ErrMsgStoreUnavailable)
	ErrProviderUnavailable = errors.New(ErrMsgProviderUnavailable)
	ErrChatUnavailable     = errors.New(ErrMsgChatUnavailable)

	ErrAuthenticationFailure = errors.New(ErrMsgAuthenticationFailure)

	// Some rooms were invited and some were not; returned alongside the outcome
	ErrPartialInviteFailure = errors.New(ErrMsgPartialInviteFailure)
)

// Retryable reports whether err comes from an unavailable dependency, so the
// same request may succeed later
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrProviderUnavailable) ||
		errors.Is(err, ErrChatUnavailable)
}
