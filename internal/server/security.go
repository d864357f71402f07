package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/crypto/bcrypt"

	"github.com/osse101/LaunchPass_Go/internal/logger"
)

// adminCredential is the shared operator login for admin routes.
// A password starting with "$2" is a bcrypt hash.
type adminCredential struct {
	username string
	password string
}

func (c adminCredential) matches(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.username)) == 1
	var passOK bool
	if strings.HasPrefix(c.password, bcryptHashPrefix) {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.password), []byte(pass)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(pass), []byte(c.password)) == 1
	}
	return userOK && passOK
}

// BasicAuthMiddleware guards admin routes. A client that keeps failing is
// refused with 429 until its detector window expires, even with good credentials.
func BasicAuthMiddleware(cred adminCredential, ips *ipResolver, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ips.ClientIP(r)
			if detector.AuthLocked(ip) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}

			user, pass, ok := r.BasicAuth()
			if ok && cred.matches(user, pass) {
				next.ServeHTTP(w, r)
				return
			}

			failures := detector.RecordFailedAuth(ip)
			logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
				"ip", ip,
				"path", r.URL.Path,
				"has_credentials", ok,
				"failures", failures)

			w.Header().Set(HeaderWWWAuthenticate, HeaderValueBasicRealm)
			http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
		})
	}
}

// RequestSizeLimitMiddleware caps every request body at maxBytes
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, ErrMsgRequestTooLarge, http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ipWindow counts one client's activity inside its current window
type ipWindow struct {
	requests   int
	failedAuth int
}

// SuspiciousActivityDetector keeps per-client counters for request rate and failed logins.
// Each client's window starts at its first request and lasts detectorWindow; the number of
// tracked clients is bounded, least recently seen first out.
type SuspiciousActivityDetector struct {
	mu      sync.Mutex
	windows *expirable.LRU[string, *ipWindow]
}

// NewSuspiciousActivityDetector creates a detector with the default window and capacity
func NewSuspiciousActivityDetector() *SuspiciousActivityDetector {
	return newDetector(maxTrackedClients, detectorWindow)
}

func newDetector(capacity int, window time.Duration) *SuspiciousActivityDetector {
	return &SuspiciousActivityDetector{
		windows: expirable.NewLRU[string, *ipWindow](capacity, nil, window),
	}
}

// window returns ip's counters, opening a fresh window when none is live. Caller holds mu.
func (s *SuspiciousActivityDetector) window(ip string) *ipWindow {
	if w, ok := s.windows.Get(ip); ok {
		return w
	}
	w := &ipWindow{}
	s.windows.Add(ip, w)
	return w
}

// RecordFailedAuth counts a failed login and returns the failures so far in the window
func (s *SuspiciousActivityDetector) RecordFailedAuth(ip string) int {
	s.mu.Lock()
	w := s.window(ip)
	w.failedAuth++
	n := w.failedAuth
	s.mu.Unlock()

	switch n {
	case failedAuthAlertCount:
		slog.Warn(SecurityAlertFailedAuth, "ip", ip, "count", n)
	case failedAuthLockoutCount:
		slog.Warn(SecurityAlertAuthLocked, "ip", ip, "count", n)
	}
	return n
}

// AuthLocked reports whether ip has failed too many logins in its window
func (s *SuspiciousActivityDetector) AuthLocked(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows.Peek(ip)
	return ok && w.failedAuth >= failedAuthLockoutCount
}

// RecordRequest counts a request and reports whether ip is still under the rate limit
func (s *SuspiciousActivityDetector) RecordRequest(ip string) bool {
	s.mu.Lock()
	w := s.window(ip)
	w.requests++
	n := w.requests
	s.mu.Unlock()

	if n <= maxRequestsPerWindow {
		return true
	}
	if (n-maxRequestsPerWindow)%highRateLogEvery == 1 {
		slog.Warn(SecurityAlertHighRate, "ip", ip, "count_in_window", n)
	}
	return false
}

// RateLimitMiddleware refuses clients over the per-window request limit
func RateLimitMiddleware(ips *ipResolver, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !detector.RecordRequest(ips.ClientIP(r)) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ipResolver finds the client address behind the configured proxies.
// TRUSTED_PROXIES entries may be single addresses or CIDR ranges.
type ipResolver struct {
	trusted []netip.Prefix
}

func newIPResolver(proxies []string) *ipResolver {
	res := &ipResolver{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if prefix, err := netip.ParsePrefix(p); err == nil {
			res.trusted = append(res.trusted, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(p); err == nil {
			addr = addr.Unmap()
			res.trusted = append(res.trusted, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		slog.Warn(LogMsgBadTrustedProxy, "value", p)
	}
	return res
}

func (res *ipResolver) isTrusted(raw string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range res.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the peer address, or when the peer is a trusted proxy the
// rightmost X-Forwarded-For hop that is not itself a trusted proxy
func (res *ipResolver) ClientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !res.isTrusted(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get(HeaderForwardedFor), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !res.isTrusted(hop) {
			return hop
		}
	}
	return peer
}

// SecurityHeadersMiddleware sets securityHeaders on every response
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, h := range securityHeaders {
				w.Header().Set(h[0], h[1])
			}
			next.ServeHTTP(w, r)
		})
	}
}
