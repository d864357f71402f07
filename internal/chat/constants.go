package chat

import "time"

// Third-party invite parameters
const (
	mediumEmail       = "email"
	identityRegister  = "/_matrix/identity/v2/account/register"
	defaultTimeout    = 10 * time.Second
	tokenCacheSize    = 8
	defaultTokenTTL   = time.Hour
	tokenExpiryMargin = time.Minute
)

// alreadyMemberHint marks an invite rejected because the user is in the room
const alreadyMemberHint = "already"

// Operation names used as metric labels
const (
	opLogin           = "login"
	opOpenIDToken     = "openid_token"
	opIdentityAccount = "identity_register"
	opInvite          = "invite"
)

// Error Messages
const (
	ErrMsgConfigIncomplete = "chat homeserver url, bot username and bot password are required"
	ErrMsgCreateClient     = "failed to create chat client"
	ErrMsgLoginFailed      = "chat bot login failed"
	ErrMsgOpenIDFailed     = "failed to get openid token"
	ErrMsgIdentityFailed   = "failed to register with identity server"
	ErrMsgNoIdentityToken  = "identity server returned no token"
	ErrMsgInvalidEmail     = "invalid email address"
	ErrMsgRoomRequired     = "room id is required"
)

// Log Messages
const (
	LogMsgLoggedIn        = "Chat bot logged in"
	LogMsgLoggedOut       = "Chat bot logged out"
	LogMsgLogoutFailed    = "Chat bot logout failed"
	LogMsgInviteSent      = "Sent email invite"
	LogMsgAlreadyMember   = "Invitee already in room"
	LogMsgInviteFailed    = "Email invite failed"
	LogMsgSessionExpired  = "Chat bot session expired, will log in again"
	LogMsgIdentityTokenOK = "Registered with identity server"
)
