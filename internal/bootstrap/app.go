package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/LaunchPass_Go/internal/alert"
	"github.com/osse101/LaunchPass_Go/internal/chat"
	"github.com/osse101/LaunchPass_Go/internal/config"
	"github.com/osse101/LaunchPass_Go/internal/payments"
	"github.com/osse101/LaunchPass_Go/internal/reconcile"
	"github.com/osse101/LaunchPass_Go/internal/server"
)

// Run loads configuration, wires every component and serves until a
// termination signal arrives.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgLoadConfig, err)
	}

	logFile, err := SetupLogger(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	warnings, err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgValidateEnv, err)
	}
	for _, w := range warnings {
		slog.Warn(LogMsgEnvWarning, "warning", w)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), StartupTimeout)
	defer cancel()

	store, closeStore, err := OpenStore(startCtx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	provider, err := payments.NewClient(payments.Config{
		SecretKey: cfg.StripeSecretKey,
		Timeout:   cfg.ExternalCallTimeout,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgPaymentsClient, err)
	}

	verifier, err := payments.NewVerifier(cfg.StripeConnectWebhookSecret)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWebhookVerifier, err)
	}

	chatClient, err := chat.NewClient(chat.Config{
		HomeserverURL:  cfg.MatrixServerURL,
		Username:       cfg.MatrixBotUsername,
		Password:       cfg.MatrixBotPassword,
		IdentityServer: cfg.MatrixIdentityServer,
		Timeout:        cfg.ExternalCallTimeout,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgChatClient, err)
	}
	// Invites log in lazily, so a homeserver outage at startup is not fatal
	if err := chatClient.Login(startCtx); err != nil {
		slog.Warn(LogMsgChatLoginFailed, "error", err)
	}

	if cfg.DiscordAlertWebhookURL == "" {
		slog.Info(LogMsgAlertsDisabled)
	}
	notifier, err := alert.NewNotifier(cfg.DiscordAlertWebhookURL, cfg.ExternalCallTimeout)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgAlertNotifier, err)
	}

	reconciler := reconcile.NewService(store, provider, chatClient, notifier, cfg, reconcile.Options{
		DefaultRoomIDs:    cfg.MatrixDefaultRoomIDs,
		DefaultFeePercent: cfg.DefaultFeePercent,
		DefaultSuccessURL: cfg.BaseURL + "/success",
		DefaultCancelURL:  cfg.BaseURL + "/cancel",
	})

	srv := server.NewServer(cfg, server.Dependencies{
		Reconciler: reconciler,
		Verifier:   verifier,
		Store:      store,
	})

	return serve(context.Background(), srv,
		shutdownStep{name: "http", stop: srv.Stop},
		shutdownStep{name: "chat", stop: func(ctx context.Context) error {
			chatClient.Close(ctx)
			return nil
		}},
	)
}
