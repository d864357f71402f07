package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/LaunchPass_Go/internal/config"
	"github.com/osse101/LaunchPass_Go/internal/handler"
	"github.com/osse101/LaunchPass_Go/internal/logger"
	"github.com/osse101/LaunchPass_Go/internal/metrics"
	"github.com/osse101/LaunchPass_Go/internal/reconcile"
)

// Public routes
const (
	PathIndex          = "/"
	PathHealthz        = "/healthz"
	PathHealth         = "/health"
	PathReadyz         = "/readyz"
	PathVersion        = "/version"
	PathMetrics        = "/metrics"
	PathSwagger        = "/swagger/*"
	PathConnectWebhook = "/webhook/stripe/connect"
	PathCreateCheckout = "/connect/create-checkout"
	PathOnboard        = "/connect/onboard"
	PathCreators       = "/creators"
)

type Server struct {
	httpServer *http.Server
	router     chi.Router
}

// Dependencies are the collaborators the routes dispatch to
type Dependencies struct {
	Reconciler reconcile.Service
	Verifier   handler.EventVerifier
	Store      handler.Pinger
}

// NewServer creates a new Server instance
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()
	ips := newIPResolver(cfg.TrustedProxies)

	r.Use(SecurityHeadersMiddleware())
	r.Use(RequestSizeLimitMiddleware(maxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Authenticated by signature, not by credential. Provider deliveries share
	// a few source addresses, so the per-client limiter does not apply.
	webhooks := handler.NewWebhookHandler(deps.Reconciler, deps.Verifier)
	r.Post(PathConnectWebhook, webhooks.HandleConnectWebhook())

	connect := handler.NewConnectHandlers(deps.Reconciler)
	creators := handler.NewCreatorHandlers(deps.Reconciler)
	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(ips, detector))

		r.Get(PathIndex, handler.HandleIndex(cfg.ServiceName, cfg.Version, endpointIndex()))
		r.Get(PathHealthz, handler.HandleHealthz())
		r.Get(PathHealth, handler.HandleHealthz())
		r.Get(PathReadyz, handler.HandleReadyz(deps.Store))
		r.Get(PathVersion, handler.HandleVersion(cfg.Version))
		r.Handle(PathMetrics, promhttp.Handler())

		r.Get(config.PathConnectReturn, connect.HandleReturn())
		r.Get(config.PathConnectRefresh, connect.HandleRefresh())
		r.Post(PathCreateCheckout, connect.HandleCreateCheckout())
		r.Get(PathSwagger, httpSwagger.WrapHandler)

		// Operator routes
		r.Group(func(r chi.Router) {
			r.Use(BasicAuthMiddleware(adminCredential{username: cfg.AdminUsername, password: cfg.AdminPassword}, ips, detector))

			r.Post(PathOnboard, connect.HandleOnboard())
			r.Route(PathCreators, func(r chi.Router) {
				r.Get("/", creators.HandleList())
				r.Get("/{id}", creators.HandleGet())
				r.Post("/{id}/generate-login-link", creators.HandleLoginLink())
				r.Post("/{id}/rooms", creators.HandleAddRooms())
			})
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		router: r,
	}
}

// endpointIndex is the endpoint map served at the root
func endpointIndex() map[string]string {
	return map[string]string{
		"health":          PathHealthz,
		"ready":           PathReadyz,
		"version":         PathVersion,
		"metrics":         PathMetrics,
		"webhook":         PathConnectWebhook,
		"onboard":         PathOnboard,
		"onboard_return":  config.PathConnectReturn,
		"onboard_refresh": config.PathConnectRefresh,
		"create_checkout": PathCreateCheckout,
		"creators":        PathCreators,
		"docs":            strings.TrimSuffix(PathSwagger, "*") + "index.html",
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func isQuietPath(path string) bool {
	for _, p := range quietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// redactHeaders copies h with credentials and signatures masked
func redactHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		out[k] = v
		for _, s := range sensitiveHeaders {
			if strings.EqualFold(k, s) {
				out[k] = []string{RedactedValue}
				break
			}
		}
	}
	return out
}

// loggingMiddleware tags each request with an id, reusing a sane inbound X-Request-ID,
// and logs its start and completion. Probe and scrape paths are not logged.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		requestID := r.Header.Get(HeaderRequestID)
		if len(requestID) == 0 || len(requestID) > maxRequestIDLen {
			requestID = logger.GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())
		log.Debug(LogMsgRequestHeaders, "headers", redactHeaders(r.Header))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		began := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(began).Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
