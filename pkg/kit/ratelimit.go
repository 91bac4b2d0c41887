package kit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const rateLimitMessage = "Too many requests, please try again later."

// IPRateLimiter allows limit requests per client IP in a sliding window.
type IPRateLimiter struct {
	// TrustProxy keys clients by the first X-Forwarded-For entry. Enable it
	// only behind a proxy that overwrites the header.
	TrustProxy bool

	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, l.TrustProxy)

		remaining, reset, limited := l.recordAndCheck(ip, l.now())

		h := w.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(l.limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(int(reset.Seconds()+0.5)))

		if limited {
			h.Set("Retry-After", strconv.Itoa(int(reset.Seconds()+0.5)))
			WriteError(w, r, http.StatusTooManyRequests, rateLimitMessage, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// recordAndCheck registers a hit for ip unless it is over the limit. It
// returns the requests left in the window and the time until the oldest hit
// expires.
func (l *IPRateLimiter) recordAndCheck(ip string, now time.Time) (remaining int, reset time.Duration, limited bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := prune(l.hits[ip], now.Add(-l.window))

	if len(ts) >= l.limit {
		l.hits[ip] = ts
		return 0, ts[0].Add(l.window).Sub(now), true
	}

	ts = append(ts, now)
	l.hits[ip] = ts
	return l.limit - len(ts), ts[0].Add(l.window).Sub(now), false
}

// Sweep forgets clients with no hits inside the window.
func (l *IPRateLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for ip, ts := range l.hits {
		if ts = prune(ts, cutoff); len(ts) == 0 {
			delete(l.hits, ip)
		} else {
			l.hits[ip] = ts
		}
	}
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	n := 0
	for _, t := range ts {
		if t.After(cutoff) {
			ts[n] = t
			n++
		}
	}
	return ts[:n]
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := firstForwardedFor(r.Header.Get("X-Forwarded-For")); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}

	return r.RemoteAddr
}

func firstForwardedFor(xff string) string {
	if xff == "" {
		return ""
	}
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}
