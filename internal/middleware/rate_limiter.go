package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"naxospos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window counter per client IP ────────────────────────────────────────

type ipWindow struct {
	count     int
	windowEnd time.Time
}

type windowLimiter struct {
	name   string
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*ipWindow
}

func newWindowLimiter(name string, limit int, window time.Duration) *windowLimiter {
	return &windowLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*ipWindow),
	}
}

// allow counts one request for ip and reports whether it is within the limit,
// plus the end of the current window.
func (l *windowLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[ip]
	if !ok || now.After(w.windowEnd) {
		w = &ipWindow{windowEnd: now.Add(l.window)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.windowEnd
}

// purge drops windows that already ended and returns how many were removed.
func (l *windowLimiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	purged := 0
	for ip, w := range l.clients {
		if now.After(w.windowEnd) {
			delete(l.clients, ip)
			purged++
		}
	}
	return purged
}

func (l *windowLimiter) handler(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(apierror.KindRateLimited, msg))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Removes expired entries so IPs that never return do not accumulate.

const purgeInterval = 5 * time.Minute

func (l *windowLimiter) startPurge() {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n := l.purge(); n > 0 {
				log.Debug().Str("limiter", l.name).Int("entries_purged", n).Msg("rate limiter map purged")
			}
		}
	}()
}

// ── Public middleware ─────────────────────────────────────────────────────────

const loginAttemptsPerMinute = 20

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	l := newWindowLimiter("login", loginAttemptsPerMinute, time.Minute)
	l.startPurge()
	return l.handler("Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter limits every client IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newWindowLimiter("api", limit, window)
	l.startPurge()
	return l.handler("Demasiadas solicitudes. Intente nuevamente en un momento.")
}
