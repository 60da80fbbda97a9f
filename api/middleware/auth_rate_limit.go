package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

// maxAuthBody bounds how much of a credential payload is buffered to find the email.
const maxAuthBody = 16 << 10

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy caps attempts per client IP and per submitted email within a fixed window.
// A zero limit disables that dimension.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// counter is one fixed-window bucket a request is charged against.
type counter struct {
	scope string
	key   string
	limit int
}

func (p AuthRateLimitPolicy) counters(ip string, body []byte) []counter {
	var out []counter
	if p.ipLimit > 0 && ip != "" {
		out = append(out, counter{scope: "ip", key: "cafe:rl:" + p.name + ":ip:" + ip, limit: p.ipLimit})
	}
	if p.emailLimit > 0 {
		if email := emailFromBody(body); email != "" {
			out = append(out, counter{scope: "email", key: "cafe:rl:" + p.name + ":email:" + digest(email), limit: p.emailLimit})
		}
	}
	return out
}

// AuthRateLimit throttles credential endpoints (login, register) with Redis-backed counters.
// The request body is buffered and restored for the next handler.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var body []byte
			if policy.emailLimit > 0 && r.Body != nil {
				var err error
				body, err = io.ReadAll(io.LimitReader(r.Body, maxAuthBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			for _, c := range policy.counters(clientIP(r), body) {
				count, err := store.IncrWithTTL(ctx, c.key, policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if count > int64(c.limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":   policy.name,
							"scope":    c.scope,
							"attempts": count,
							"limit":    c.limit,
						}), "auth.rate_limit.blocked")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}

// digest keeps raw emails out of Redis keys.
func digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
