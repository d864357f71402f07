package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/osse101/LaunchPass_Go/internal/logger"
)

const (
	readinessTimeout = 5 * time.Second
	// readinessReuse spares the store (and the Sheets read quota) from probe traffic
	readinessReuse = 10 * time.Second
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
	statusRunning     = "running"
)

// HealthResponse is the body of the liveness and readiness probes
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealthz answers as long as the process serves HTTP
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: statusOK})
	}
}

// readiness remembers the last successful store ping. Failures are never reused.
type readiness struct {
	store Pinger
	now   func() time.Time

	mu      sync.Mutex
	okUntil time.Time
}

func (rd *readiness) check(ctx context.Context) error {
	rd.mu.Lock()
	fresh := rd.now().Before(rd.okUntil)
	rd.mu.Unlock()
	if fresh {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	if err := rd.store.Ping(ctx); err != nil {
		return err
	}

	rd.mu.Lock()
	rd.okUntil = rd.now().Add(readinessReuse)
	rd.mu.Unlock()
	return nil
}

// HandleReadyz reports whether the record store answers
// @Summary Readiness check
// @Description A successful store ping is reused for a few seconds
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func HandleReadyz(store Pinger) http.HandlerFunc {
	rd := &readiness{store: store, now: time.Now}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := rd.check(r.Context()); err != nil {
			logger.FromContext(r.Context()).Error(LogMsgReadinessFailed, "error", err)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  statusUnavailable,
				Message: ErrMsgReadinessStoreErr,
			})
			return
		}
		respondJSON(w, http.StatusOK, HealthResponse{Status: statusOK})
	}
}

// IndexResponse names the service and maps its endpoints
type IndexResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// HandleIndex lists the service endpoints
// @Summary Service index
// @Tags health
// @Produce json
// @Success 200 {object} IndexResponse
// @Router / [get]
func HandleIndex(serviceName, version string, endpoints map[string]string) http.HandlerFunc {
	body := IndexResponse{
		Service:   serviceName,
		Version:   version,
		Status:    statusRunning,
		Endpoints: endpoints,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, body)
	}
}
