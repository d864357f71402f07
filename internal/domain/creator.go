package domain

import (
	"sort"
	"strings"
	"time"
)

// RoomIDSeparator joins chat room ids in the persisted column
const RoomIDSeparator = ","

// Creator is one onboarded seller, one row in the record store
type Creator struct {
	CreatorID          string    `json:"creator_id" db:"creator_id"`
	ProviderAccountID  string    `json:"provider_account_id" db:"provider_account_id"`
	Email              string    `json:"email" db:"email"`
	DisplayName        string    `json:"display_name" db:"display_name"`
	OnboardingComplete bool      `json:"onboarding_complete" db:"onboarding_complete"`
	ChargesEnabled     bool      `json:"charges_enabled" db:"charges_enabled"`
	ChatRoomIDs        []string  `json:"chat_room_ids" db:"chat_room_ids"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// NewCreator builds a fresh record for a first onboarding
func NewCreator(creatorID, providerAccountID, email, displayName string, now time.Time) *Creator {
	return &Creator{
		CreatorID:         creatorID,
		ProviderAccountID: providerAccountID,
		Email:             email,
		DisplayName:       displayName,
		ChatRoomIDs:       []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Touch sets UpdatedAt to now, never moving it backwards
func (c *Creator) Touch(now time.Time) {
	if now.Before(c.UpdatedAt) {
		return
	}
	c.UpdatedAt = now
}

// ApplyAccountStatus merges a provider status report into the record.
// ChargesEnabled follows the provider in both directions; OnboardingComplete only moves false to true.
func (c *Creator) ApplyAccountStatus(chargesEnabled, detailsSubmitted bool) {
	c.ChargesEnabled = chargesEnabled
	if detailsSubmitted {
		c.OnboardingComplete = true
	}
}

// AddRooms unions roomIDs into ChatRoomIDs and reports whether anything was added.
// Existing entries keep their order; rooms are never removed.
func (c *Creator) AddRooms(roomIDs ...string) bool {
	seen := make(map[string]struct{}, len(c.ChatRoomIDs))
	for _, id := range c.ChatRoomIDs {
		seen[id] = struct{}{}
	}

	added := false
	for _, id := range roomIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		c.ChatRoomIDs = append(c.ChatRoomIDs, id)
		added = true
	}
	return added
}

// JoinRoomIDs renders room ids for the delimited column
func JoinRoomIDs(ids []string) string {
	return strings.Join(ids, RoomIDSeparator)
}

// SplitRoomIDs parses the delimited column, dropping blanks and duplicates
func SplitRoomIDs(raw string) []string {
	ids := []string{}
	if strings.TrimSpace(raw) == "" {
		return ids
	}
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, RoomIDSeparator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		ids = append(ids, part)
	}
	return ids
}

// SortCreators orders records by CreatedAt then CreatorID for stable listings
func SortCreators(creators []Creator) {
	sort.SliceStable(creators, func(i, j int) bool {
		if creators[i].CreatedAt.Equal(creators[j].CreatedAt) {
			return creators[i].CreatorID < creators[j].CreatorID
		}
		return creators[i].CreatedAt.Before(creators[j].CreatedAt)
	})
}
