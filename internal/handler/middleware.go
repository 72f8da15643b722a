package handler

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "0")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// Throttle is a per-process token bucket per client IP. It sits in front of
// the store-backed contact limiter and only smooths bursts.
type Throttle struct {
	limit             rate.Limit
	burst             int
	trustedProxyCount int
	now               func() time.Time

	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
}

// NewThrottle returns a Throttle allowing rps requests per second with the
// given burst, remembering at most size clients. rps <= 0 returns nil, and
// a nil Throttle lets everything through.
func NewThrottle(rps float64, burst, size, trustedProxyCount int) (*Throttle, error) {
	if rps <= 0 {
		return nil, nil
	}
	cache, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err
	}
	return &Throttle{
		limit:             rate.Limit(rps),
		burst:             burst,
		trustedProxyCount: trustedProxyCount,
		now:               time.Now,
		limiters:          cache,
	}, nil
}

func (t *Throttle) limiter(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.limiters.Get(ip); ok {
		return l
	}
	l := rate.NewLimiter(t.limit, t.burst)
	t.limiters.Add(ip, l)
	return l
}

// Middleware rejects a client with 429 once its bucket is empty.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	if t == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := t.now()
		res := t.limiter(ClientIP(r, t.trustedProxyCount)).ReserveN(now, 1)
		if !res.OK() {
			throttled(w, time.Second)
			return
		}
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			throttled(w, delay)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func throttled(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate_limited", Detail: "too many requests"})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// ClientIP extracts the real client IP. With trustedProxyCount > 0 it reads
// the X-Forwarded-For entry our outermost proxy appended, so a client
// cannot spoof it by sending its own header.
func ClientIP(r *http.Request, trustedProxyCount int) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && trustedProxyCount > 0 {
		parts := strings.Split(xff, ",")
		idx := len(parts) - trustedProxyCount
		if idx >= 0 && idx < len(parts) {
			if ip := strings.TrimSpace(parts[idx]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
