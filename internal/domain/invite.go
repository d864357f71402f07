package domain

// InviteStatus is the outcome of a single chat room invitation
type InviteStatus string

const (
	InviteSent          InviteStatus = "sent"
	InviteAlreadyMember InviteStatus = "already_member"
	InviteFailed        InviteStatus = "failed"
)

// InviteResult reports one room invitation attempt
type InviteResult struct {
	RoomID string       `json:"room_id"`
	Status InviteStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// Succeeded is true for sent and already_member
func (r InviteResult) Succeeded() bool {
	return r.Status == InviteSent || r.Status == InviteAlreadyMember
}

// CheckoutOutcome is the structured result of reconciling a completed checkout
type CheckoutOutcome struct {
	ProviderAccountID string         `json:"provider_account_id"`
	CreatorID         string         `json:"creator_id,omitempty"`
	CustomerEmail     string         `json:"customer_email,omitempty"`
	UsedDefaultRooms  bool           `json:"used_default_rooms"`
	Invites           []InviteResult `json:"invites"`
}

// Failed returns the invitations that did not succeed
func (o CheckoutOutcome) Failed() []InviteResult {
	var failed []InviteResult
	for _, inv := range o.Invites {
		if !inv.Succeeded() {
			failed = append(failed, inv)
		}
	}
	return failed
}

// Partial is true when some but not all invitations failed
func (o CheckoutOutcome) Partial() bool {
	n := len(o.Failed())
	return n > 0 && n < len(o.Invites)
}

// AllFailed is true when there was at least one invitation and none succeeded
func (o CheckoutOutcome) AllFailed() bool {
	return len(o.Invites) > 0 && len(o.Failed()) == len(o.Invites)
}
