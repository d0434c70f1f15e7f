package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api/problem"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/config"
	"golang.org/x/time/rate"
)

type RateLimitTier string

const (
	TierPublic        RateLimitTier = "public"
	TierAuthenticated RateLimitTier = "authenticated"
	// TierLogin covers login and password recovery.
	TierLogin RateLimitTier = "login"
)

const (
	limiterTTL      = 15 * time.Minute
	cleanupInterval = 5 * time.Minute
	loginWindow     = 15 * time.Minute
)

var errRateLimited = errors.New("too many requests, try again later")

// RateLimiter keeps one token bucket per tier and client address.
type RateLimiter struct {
	mu                sync.Mutex
	limiters          map[string]*limiterEntry
	perWindow         map[RateLimitTier]int
	trustedProxyCIDRs []*net.IPNet
	now               func() time.Time
	stop              chan struct{}
	stopOnce          sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter starts a background sweep of idle buckets; call Stop to
// end it.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		perWindow: map[RateLimitTier]int{
			TierPublic:        cfg.PublicPerMinute,
			TierAuthenticated: cfg.AuthenticatedPerMinute,
			TierLogin:         cfg.LoginPer15Minutes,
		},
		trustedProxyCIDRs: parseCIDRs(cfg.TrustedProxyCIDRs),
		now:               time.Now,
		stop:              make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Limit rejects requests over the tier's budget with 429 and Retry-After.
// A tier with a zero budget is unlimited.
func (rl *RateLimiter) Limit(tier RateLimitTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reservation := rl.reserve(tier, rl.clientKey(r))
			if reservation == nil {
				next.ServeHTTP(w, r)
				return
			}
			if !reservation.OK() {
				rl.reject(w, r, tier, 0)
				return
			}
			if delay := reservation.DelayFrom(rl.now()); delay > 0 {
				reservation.CancelAt(rl.now())
				rl.reject(w, r, tier, delay)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request, tier RateLimitTier, delay time.Duration) {
	seconds := int(delay.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = int(rl.interval(tier) / time.Second)
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	problem.Write(w, r, http.StatusTooManyRequests, problem.TypeRateLimited, "Too Many Requests",
		fmt.Errorf("%w (tier %s)", errRateLimited, tier),
		problem.WithDetail(errRateLimited.Error()))
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// interval is the refill period of one token. The login budget is spread
// over fifteen minutes, every other tier over one.
func (rl *RateLimiter) interval(tier RateLimitTier) time.Duration {
	limit := rl.perWindow[tier]
	if limit <= 0 {
		return 0
	}
	window := time.Minute
	if tier == TierLogin {
		window = loginWindow
	}
	return window / time.Duration(limit)
}

func (rl *RateLimiter) reserve(tier RateLimitTier, key string) *rate.Reservation {
	limit := rl.perWindow[tier]
	if limit <= 0 {
		return nil
	}

	lookup := string(tier) + ":" + key
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[lookup]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(rl.interval(tier)), limit)}
		rl.limiters[lookup] = entry
	}
	entry.lastSeen = now
	return entry.limiter.ReserveN(now, 1)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup drops buckets idle for longer than limiterTTL.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(rl.limiters, key)
		}
	}
}

// clientKey is the caller's address. Forwarding headers are only honored
// when the direct peer is a trusted proxy.
func (rl *RateLimiter) clientKey(r *http.Request) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if rl.isTrustedProxy(remoteIP) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
	}
	return remoteIP
}

func (rl *RateLimiter) isTrustedProxy(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, cidr := range rl.trustedProxyCIDRs {
		if cidr.Contains(parsed) {
			return true
		}
	}
	return false
}

func parseCIDRs(values []string) []*net.IPNet {
	var out []*net.IPNet
	for _, value := range values {
		_, cidr, err := net.ParseCIDR(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		out = append(out, cidr)
	}
	return out
}
