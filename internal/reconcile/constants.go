package reconcile

// Onboarding return statuses
const (
	OnboardingStatusComplete   = "complete"
	OnboardingStatusIncomplete = "incomplete"
)

// DefaultInviteConcurrency bounds parallel room invitations for one checkout
const DefaultInviteConcurrency = 4

// Error Messages
const (
	ErrMsgCreatorIDRequired = "creator_id is required"
	ErrMsgEmailRequired     = "email is required"
	ErrMsgAccountIDRequired = "account_id is required"
	ErrMsgPriceIDRequired   = "price_id is required"
	ErrMsgRoomIDsRequired   = "room_ids must contain at least one room id"
	ErrMsgNoProviderAccount = "creator has no provider account"
	ErrMsgLookupFailed      = "failed to look up creator"
	ErrMsgSaveFailed        = "failed to save creator"
	ErrMsgOnboardingLink    = "failed to create onboarding link"
	ErrMsgCustomerLookup    = "failed to resolve customer email"
	ErrMsgNoRoomsConfigured = "no chat rooms to invite to"
	ErrMsgAccountStatus     = "failed to get account status"
	ErrMsgCreateAccount     = "failed to create provider account"
	ErrMsgCheckoutCreate    = "failed to create checkout session"
	ErrMsgLoginLink         = "failed to create login link"
	ErrMsgListCreators      = "failed to list creators"
	ErrMsgCreatorRace       = "creator was onboarded concurrently"
)

// Log Messages
const (
	LogMsgCreatorCreated        = "Created creator record"
	LogMsgAccountReused         = "Reusing existing provider account"
	LogMsgAccountPatched        = "Attached provider account to existing creator"
	LogMsgOrphanedAccount       = "Provider account orphaned by a concurrent onboarding"
	LogMsgUnknownAccount        = "Ignoring event for unknown provider account"
	LogMsgAccountUpdated        = "Applied account status"
	LogMsgOnboardingCompleted   = "Creator completed onboarding"
	LogMsgNoCustomerEmail       = "Checkout has no usable customer email, skipping invites"
	LogMsgUsingDefaultRooms     = "Creator has no chat rooms, using default rooms"
	LogMsgNoRooms               = "No chat rooms to invite to, skipping invites"
	LogMsgCheckoutReconciled    = "Reconciled completed checkout"
	LogMsgSubscriptionDeleted   = "Subscription cancelled, chat removal is not supported"
	LogMsgRoomsAdded            = "Added chat rooms to creator"
	LogMsgRoomsUnchanged        = "Chat rooms already present"
	LogMsgOnboardingReturnState = "Creator returned from onboarding"
)
