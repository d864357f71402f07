package sheets

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/osse101/LaunchPass_Go/internal/domain"
)

// layout locates the known columns of a worksheet by header name.
// Columns the service does not know about are left untouched on write.
type layout struct {
	index map[string]int
	width int
}

func parseLayout(header []interface{}) (layout, error) {
	l := layout{index: make(map[string]int, len(header)), width: len(header)}
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cellString(cell)))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if name == "" {
			continue
		}
		if _, dup := l.index[name]; !dup {
			l.index[name] = i
		}
	}

	for _, required := range []string{ColCreatorID, ColProviderAccountID} {
		if _, ok := l.index[required]; !ok {
			return layout{}, fmt.Errorf("%w: %s: %s %q", domain.ErrStoreUnavailable, domain.ErrMsgMalformedRecord, ErrMsgMissingColumn, required)
		}
	}
	return l, nil
}

// defaultLayout matches a worksheet created by the setup command
func defaultLayout() layout {
	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	l, _ := parseLayout(header)
	return l
}

func (l layout) get(row []interface{}, column string) string {
	i, ok := l.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(cellString(row[i]))
}

func (l layout) creatorID(row []interface{}) string {
	return l.get(row, ColCreatorID)
}

func (l layout) decode(row []interface{}) domain.Creator {
	c := domain.Creator{
		CreatorID:          l.get(row, ColCreatorID),
		ProviderAccountID:  l.get(row, ColProviderAccountID),
		Email:              l.get(row, ColEmail),
		DisplayName:        l.get(row, ColDisplayName),
		OnboardingComplete: parseBool(l.get(row, ColOnboardingComplete)),
		ChargesEnabled:     parseBool(l.get(row, ColChargesEnabled)),
		ChatRoomIDs:        domain.SplitRoomIDs(l.get(row, ColChatRoomIDs)),
	}
	c.CreatedAt = parseTimestamp(c.CreatorID, ColCreatedAt, l.get(row, ColCreatedAt))
	c.UpdatedAt = parseTimestamp(c.CreatorID, ColUpdatedAt, l.get(row, ColUpdatedAt))
	return c
}

// encode renders c over a copy of existing so unknown columns survive the write
func (l layout) encode(c *domain.Creator, existing []interface{}) []interface{} {
	row := make([]interface{}, l.width)
	copy(row, existing)
	for i := range row {
		if row[i] == nil {
			row[i] = ""
		}
	}

	set := func(column, value string) {
		if i, ok := l.index[column]; ok {
			row[i] = value
		}
	}
	set(ColCreatorID, c.CreatorID)
	set(ColProviderAccountID, c.ProviderAccountID)
	set(ColEmail, c.Email)
	set(ColDisplayName, c.DisplayName)
	set(ColOnboardingComplete, formatBool(c.OnboardingComplete))
	set(ColChargesEnabled, formatBool(c.ChargesEnabled))
	set(ColChatRoomIDs, domain.JoinRoomIDs(c.ChatRoomIDs))
	set(ColCreatedAt, formatTimestamp(c.CreatedAt))
	set(ColUpdatedAt, formatTimestamp(c.UpdatedAt))
	return row
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func parseBool(s string) bool {
	return strings.EqualFold(s, cellTrue)
}

func formatBool(b bool) string {
	if b {
		return cellTrue
	}
	return cellFalse
}

// parseTimestamp treats zone-less values as UTC and logs values it cannot read
func parseTimestamp(creatorID, column, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	slog.Default().Warn(LogMsgBadTimestamp, "creator_id", creatorID, "column", column, "value", s)
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
