// cmd/api/middleware.go
// This file contains HTTP middleware used to wrap the router.
// Middleware functions intercept every request before it reaches a handler.
package main

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aoideee/library-catalog/internal/data"
)

// recoverPanic catches any runtime panic that occurs in a downstream handler
// and turns it into a 500 response instead of a dropped connection.
func (app *applicationDependencies) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ipRateLimiter keeps one token bucket per client IP.
type ipRateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*client
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*client),
	}
}

// allow takes one token from the bucket of ip.
func (l *ipRateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, found := l.clients[ip]
	if !found {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

// evict drops the buckets of clients not seen since cutoff.
func (l *ipRateLimiter) evict(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// clientIP strips the port from RemoteAddr. After middleware.RealIP the
// address may already be a bare IP.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// rateLimit applies the configured per-IP limit. Buckets idle for 3 minutes
// are evicted once a minute.
func (app *applicationDependencies) rateLimit(next http.Handler) http.Handler {
	if !app.config.limiter.enabled {
		return next
	}

	limiter := newIPRateLimiter(app.config.limiter.rps, app.config.limiter.burst)

	go func() {
		for range time.Tick(time.Minute) {
			limiter.evict(time.Now().Add(-3 * time.Minute))
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.allow(clientIP(r), time.Now()) {
			app.rateLimitExceededResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the requester from the header set by the upstream proxy.
// Without the header the request continues as the anonymous user.
func (app *applicationDependencies) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", app.config.auth.header)

		username := strings.TrimSpace(r.Header.Get(app.config.auth.header))
		if username == "" {
			next.ServeHTTP(w, app.contextSetUser(r, data.AnonymousUser))
			return
		}

		user, err := app.models.Users.Upsert(r.Context(), username)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		next.ServeHTTP(w, app.contextSetUser(r, user))
	})
}

// isPublicPath reports whether path is reachable without an identity.
func isPublicPath(path string) bool {
	switch path {
	case "/", "/logout/":
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

// requireAuthenticatedUser sends anonymous requests for private paths to the
// landing page. It must run after authenticate.
func (app *applicationDependencies) requireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) || !app.contextGetUser(r).IsAnonymous() {
			next.ServeHTTP(w, r)
			return
		}

		http.Redirect(w, r, "/", http.StatusFound)
	})
}
