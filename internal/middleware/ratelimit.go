package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/lumeo-dev/lumeo/internal/middleware/ratelimiter"
)

// RateLimit rejects requests with 429 when the caller's bucket is
// empty. The identity function picks the bucket key; if it fails the
// request is let through rather than blocked on a limiter bug.
func RateLimit(limiter *ratelimiter.Limiter, identity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := identity(r)
			if err == nil && !limiter.Allow(id) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IPIdentity extracts the client IP from RemoteAddr. Forwarding headers
// are deliberately ignored: they are trivially spoofed without a
// trusted reverse proxy.
func IPIdentity(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid ip address: %s", ip)
	}
	return ip, nil
}

// AccountIdentity keys the bucket by the authenticated account. Must
// run inside an Auth-wrapped chain.
func AccountIdentity(r *http.Request) (string, error) {
	account := AccountFromContext(r)
	if account == nil {
		return "", errors.New("no authenticated account")
	}
	return fmt.Sprintf("account_%d", account.Id), nil
}

// EmailIdentity reads the email field from the JSON body and restores
// the body for the handler. Used on unauthenticated endpoints that send
// email, so one address cannot be flooded from many IPs.
func EmailIdentity(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", errors.New("failed to read request body")
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	var data struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &data); err != nil || data.Email == "" {
		return "", errors.New("no email in request body")
	}
	return data.Email, nil
}

// LimitByIPAndEmail stacks both identities on one limiter.
func LimitByIPAndEmail(limiter *ratelimiter.Limiter, next http.Handler) http.Handler {
	return RateLimit(limiter, IPIdentity)(RateLimit(limiter, EmailIdentity)(next))
}
