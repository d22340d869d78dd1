package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/safariconnector/backend/api/responses"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy throttles one unauthenticated surface (login, register,
// guest enquiry). IP counting blunts broad scans; email counting blunts
// credential stuffing against a single account. Emails are hashed before they
// become redis keys.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "auth"
	}
	return p.name
}

// AuthRateLimit wraps a handler with the policy's counters. A disabled policy
// or missing store turns the middleware into a pass-through.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		rl := &authRateLimiter{policy: policy, store: store, logg: logg}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.blocked(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type authRateLimiter struct {
	policy AuthRateLimitPolicy
	store  rateLimiterStore
	logg   *logger.Logger
}

// blocked runs the IP counter, then (when configured) re-reads the body to
// count per-email. It writes the response itself when the request must stop.
func (rl *authRateLimiter) blocked(w http.ResponseWriter, r *http.Request) bool {
	ctx := r.Context()

	if rl.policy.ipLimit > 0 {
		ip := clientIP(r)
		if ip != "" {
			key := fmt.Sprintf("rl:ip:%s:%s", rl.policy.normalizedName(), ip)
			if done := rl.enforce(ctx, w, key, rl.policy.ipLimit, map[string]any{"scope": "ip", "ip": ip}); done {
				return true
			}
		}
	}

	if rl.policy.emailLimit > 0 {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
			return true
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if email := normalizeEmail(extractEmail(body)); email != "" {
			hash := hashValue(email)
			key := fmt.Sprintf("rl:email:%s:%s", rl.policy.normalizedName(), hash)
			if done := rl.enforce(ctx, w, key, rl.policy.emailLimit, map[string]any{"scope": "email", "email_hash": hash}); done {
				return true
			}
		}
	}

	return false
}

// enforce bumps one counter and writes the 429 (or 503 on store failure)
// when the request cannot proceed.
func (rl *authRateLimiter) enforce(ctx context.Context, w http.ResponseWriter, key string, limit int, fields map[string]any) bool {
	count, err := rl.store.IncrWithTTL(ctx, key, rl.policy.window)
	if err != nil {
		responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return true
	}
	if count <= int64(limit) {
		return false
	}

	if rl.logg != nil {
		fields["policy"] = rl.policy.normalizedName()
		fields["attempts"] = count
		fields["limit"] = limit
		fields["window_seconds"] = int(rl.policy.window.Seconds())
		rl.logg.Warn(rl.logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return true
}

// clientIP prefers proxy headers over RemoteAddr since the API always sits
// behind a load balancer in deployed environments.
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
