package api

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimits configures the read and write request budgets per client. A
// client may spend Max requests at once and regains them evenly over Window.
// A non-positive Max disables that limiter.
type RateLimits struct {
	Window   time.Duration
	ReadMax  int
	WriteMax int
}

// clientLimiter hands out one token bucket per client IP.
type clientLimiter struct {
	class    string
	window   time.Duration
	interval time.Duration
	burst    int
	message  string
	metrics  *Metrics
	now      func() time.Time

	mu        sync.Mutex
	buckets   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(class string, window time.Duration, max int, m *Metrics) *clientLimiter {
	if max <= 0 {
		return nil
	}
	return &clientLimiter{
		class:     class,
		window:    window,
		interval:  window / time.Duration(max),
		burst:     max,
		message:   fmt.Sprintf("Too many %s requests. Please try again after %s.", class, humanWindow(window)),
		metrics:   m,
		now:       time.Now,
		buckets:   make(map[string]*clientBucket),
		lastSweep: time.Now(),
	}
}

// take spends one token from ip's bucket and reports whether it was
// available along with the tokens left afterwards.
func (l *clientLimiter) take(ip string) (bool, float64) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// A bucket idle for a whole window has refilled completely, so dropping
	// it changes nothing for that client.
	if now.Sub(l.lastSweep) >= l.window {
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) >= l.window {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rate.Every(l.interval), l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	return allowed, b.limiter.TokensAt(now)
}

// Middleware answers 429 once the client has spent its budget. Every
// response carries RateLimit-Limit, RateLimit-Remaining and RateLimit-Reset;
// a 429 also carries Retry-After. A nil limiter lets everything through.
func (l *clientLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		allowed, tokens := l.take(ip)

		remaining := int(math.Floor(tokens))
		if remaining < 0 {
			remaining = 0
		}
		h := w.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(l.burst))
		h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(l.secondsFor(float64(l.burst)-tokens)))

		if !allowed {
			slog.Warn("rate limit exceeded", "class", l.class, "ip", ip, "path", r.URL.Path)
			l.metrics.rateLimited(l.class)
			h.Set("Retry-After", strconv.Itoa(l.secondsFor(1-tokens)))
			httpError(w, http.StatusTooManyRequests, "%s", l.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secondsFor is how long the bucket takes to regain n tokens, rounded up.
func (l *clientLimiter) secondsFor(n float64) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(n * l.interval.Seconds()))
}

// clientIP is the host part of RemoteAddr, which middleware.RealIP has
// already rewritten from proxy headers.
func clientIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func humanWindow(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d >= time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0 && d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
