package alert

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
	"github.com/osse101/LaunchPass_Go/internal/metrics"
)

const opInviteAlert = "invite_failure"

// Notifier reports operational problems to the operators
type Notifier interface {
	InviteFailures(ctx context.Context, outcome domain.CheckoutOutcome)
}

// Nop drops every alert
type Nop struct{}

func (Nop) InviteFailures(context.Context, domain.CheckoutOutcome) {}

// DiscordNotifier posts alerts to a Discord channel webhook
type DiscordNotifier struct {
	session   *discordgo.Session
	webhookID string
	token     string
	timeout   time.Duration
}

// NewNotifier returns a Discord notifier, or Nop when webhookURL is empty
func NewNotifier(webhookURL string, timeout time.Duration) (Notifier, error) {
	if webhookURL == "" {
		return Nop{}, nil
	}
	return NewDiscordNotifier(webhookURL, timeout)
}

// NewDiscordNotifier takes a channel webhook URL of the form .../webhooks/{id}/{token}
func NewDiscordNotifier(webhookURL string, timeout time.Duration) (*DiscordNotifier, error) {
	webhookID, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// webhooks authenticate with their token, the session carries no bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgCreateSession, err)
	}
	session.Client = &http.Client{Timeout: timeout}
	session.ShouldRetryOnRateLimit = false
	session.MaxRestRetries = 0

	return &DiscordNotifier{
		session:   session,
		webhookID: webhookID,
		token:     token,
		timeout:   timeout,
	}, nil
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", "", errors.New(ErrMsgInvalidWebhookURL)
	}
	idx := strings.Index(u.Path, webhookPathPrefix)
	if idx < 0 {
		return "", "", errors.New(ErrMsgInvalidWebhookURL)
	}
	parts := strings.Split(strings.Trim(u.Path[idx+len(webhookPathPrefix):], "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New(ErrMsgInvalidWebhookURL)
	}
	return parts[0], parts[1], nil
}

// InviteFailures posts the failed rooms of a checkout. Delivery errors are logged, never returned.
func (n *DiscordNotifier) InviteFailures(ctx context.Context, outcome domain.CheckoutOutcome) {
	failed := outcome.Failed()
	if len(failed) == 0 {
		return
	}
	log := logger.FromContext(ctx)

	err := n.send(ctx, inviteFailureEmbed(outcome, failed))
	if err != nil {
		log.Warn(LogMsgAlertFailed, "error", err, "provider_account_id", outcome.ProviderAccountID)
		return
	}
	log.Info(LogMsgAlertSent, "provider_account_id", outcome.ProviderAccountID, "failed", len(failed))
}

func (n *DiscordNotifier) send(ctx context.Context, embed *discordgo.MessageEmbed) (err error) {
	defer metrics.ObserveExternalCall(metrics.ServiceAlerts, opInviteAlert, time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	_, err = n.session.WebhookExecute(n.webhookID, n.token, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	return err
}

func inviteFailureEmbed(outcome domain.CheckoutOutcome, failed []domain.InviteResult) *discordgo.MessageEmbed {
	title, color := titlePartial, embedColorPartial
	if outcome.AllFailed() {
		title, color = titleAllFail, embedColorFailed
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: fieldAccount, Value: valueOrDash(outcome.ProviderAccountID), Inline: true},
		{Name: fieldCreator, Value: valueOrDash(outcome.CreatorID), Inline: true},
		{Name: fieldCustomer, Value: valueOrDash(outcome.CustomerEmail), Inline: true},
	}
	for _, inv := range failed {
		if len(fields) == maxEmbedFields {
			break
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  inv.RoomID,
			Value: truncate(valueOrDash(inv.Error), maxFieldValue),
		})
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("%d of %d invitations failed", len(failed), len(outcome.Invites)),
		Color:       color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
