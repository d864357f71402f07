package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/LaunchPass_Go/internal/config"
	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/handler"
	"github.com/osse101/LaunchPass_Go/internal/payments"
	"github.com/osse101/LaunchPass_Go/internal/reconcile"
)

// stubReconciler answers the few calls the routing tests make
type stubReconciler struct {
	reconcile.Service
}

func (stubReconciler) ListCreators(ctx context.Context) ([]domain.Creator, error) {
	return []domain.Creator{{CreatorID: "c1"}}, nil
}

func (stubReconciler) CompleteOnboardingReturn(ctx context.Context, accountID string) (*reconcile.OnboardingReturn, error) {
	return &reconcile.OnboardingReturn{Status: reconcile.OnboardingStatusComplete, AccountID: accountID, ChargesEnabled: true}, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, storeErr error) http.Handler {
	t.Helper()
	verifier, err := payments.NewVerifier("whsec_test")
	require.NoError(t, err)

	cfg := &config.Config{
		Port:          0,
		ServiceName:   "launchpass",
		AdminUsername: "ops",
		AdminPassword: "hunter2",
	}
	return NewServer(cfg, Dependencies{
		Reconciler: stubReconciler{},
		Verifier:   verifier,
		Store:      pingFunc(func(context.Context) error { return storeErr }),
	}).Handler()
}

func TestServer_AdminRoutesRequireCredentials(t *testing.T) {
	srv := newTestServer(t, nil)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/creators"},
		{http.MethodGet, "/creators/c1"},
		{http.MethodPost, "/creators/c1/generate-login-link"},
		{http.MethodPost, "/creators/c1/rooms"},
		{http.MethodPost, "/connect/onboard"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/creators", nil)
	req.SetBasicAuth("ops", "hunter2")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"creator_id":"c1"`)
}

func TestServer_PublicRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"liveness", http.MethodGet, "/healthz", http.StatusOK},
		{"liveness alias", http.MethodGet, "/health", http.StatusOK},
		{"readiness", http.MethodGet, "/readyz", http.StatusOK},
		{"version", http.MethodGet, "/version", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"onboarding return", http.MethodGet, "/connect/return?account_id=acct_1", http.StatusOK},
		{"webhook without signature is rejected, not challenged", http.MethodPost, "/webhook/stripe/connect", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, HeaderValueNoSniff, w.Header().Get(HeaderContentType))
		})
	}
}

func TestServer_ReadinessReflectsStore(t *testing.T) {
	srv := newTestServer(t, errors.New("sheets: 503"))

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_Index(t *testing.T) {
	srv := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp handler.IndexResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "launchpass", resp.Service)
	assert.Equal(t, PathConnectWebhook, resp.Endpoints["webhook"])
	assert.Equal(t, "/swagger/index.html", resp.Endpoints["docs"])
}

func TestServer_RequestSizeLimit(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/connect/create-checkout", strings.NewReader(`{"creator_id":"`+strings.Repeat("x", maxRequestBodyBytes)+`"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServer_WebhookBypassesRateLimit(t *testing.T) {
	srv := newTestServer(t, nil)

	for i := 0; i < maxRequestsPerWindow+5; i++ {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, PathConnectWebhook, strings.NewReader("{}")))
		require.Equal(t, http.StatusBadRequest, w.Code, "delivery %d", i)
	}

	// The same client is still limited on the other routes
	for i := 0; i < maxRequestsPerWindow; i++ {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, PathHealthz, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, PathHealthz, nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
