// LaunchPass onboards creators onto connected payment accounts and invites
// their paying customers into chat rooms.
//
// @title LaunchPass API
// @version 1.0
// @description Creator onboarding, checkout and webhook reconciliation.
// @BasePath /
// @securityDefinitions.basic BasicAuth
package main

import (
	"log/slog"
	"os"

	"github.com/osse101/LaunchPass_Go/internal/bootstrap"
)

func main() {
	if err := bootstrap.Run(); err != nil {
		slog.Error("LaunchPass exited", "error", err)
		os.Exit(1)
	}
}
