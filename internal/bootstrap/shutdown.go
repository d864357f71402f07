package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// runnable is a blocking server whose Start returns once Stop is called
type runnable interface {
	Start() error
	Stop(ctx context.Context) error
}

// shutdownStep releases one component
type shutdownStep struct {
	name string
	stop func(ctx context.Context) error
}

// serve runs srv until it fails, parent is cancelled or the process receives
// SIGINT or SIGTERM, then runs the shutdown steps
func serve(parent context.Context, srv runnable, steps ...shutdownStep) error {
	sigCtx, stopSignals := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	g, ctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: %w", ErrMsgServerFailed, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info(LogMsgShutdownSignal, "cause", context.Cause(ctx))

		stopCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		GracefulShutdown(stopCtx, steps...)
		return nil
	})
	return g.Wait()
}

// GracefulShutdown runs steps in order. The HTTP server goes first so in-flight
// webhooks finish before the sessions they use are closed. A failing step is
// logged and does not stop the ones after it.
func GracefulShutdown(ctx context.Context, steps ...shutdownStep) {
	slog.Info(LogMsgShuttingDownServer, "steps", len(steps))
	for _, step := range steps {
		began := time.Now()
		if err := step.stop(ctx); err != nil {
			slog.Error(LogMsgShutdownStepFailed, "component", step.name, "error", err)
			continue
		}
		slog.Debug(LogMsgShutdownStepDone, "component", step.name, "took", time.Since(began))
	}
	slog.Info(LogMsgServerStopped)
}
