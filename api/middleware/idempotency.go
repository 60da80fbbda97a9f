package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	pkgredis "github.com/amanagarwal0602/randomcafe-sub001/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	// IdempotencyTTL covers admin creates and registration.
	IdempotencyTTL = 24 * time.Hour
	// OrderIdempotencyTTL is longer because a duplicate order reaches the kitchen.
	OrderIdempotencyTTL = 7 * 24 * time.Hour
)

// storedResponse is what gets replayed for a repeated key.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Idempotency requires an Idempotency-Key header and replays the first non-5xx response
// for the same caller, route and key. Reusing a key with a different body is a 409.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			hash := hex.EncodeToString(sum[:])
			redisKey := store.IdempotencyKey(idempotencyScope(r), key)

			raw, err := store.Get(ctx, redisKey)
			switch {
			case err != nil && !pkgredis.IsMiss(err):
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup"))
				return
			case err == nil:
				var prior storedResponse
				if err := json.Unmarshal([]byte(raw), &prior); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "corrupt idempotency record"))
					return
				}
				if prior.RequestHash != hash {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				if prior.ContentType != "" {
					w.Header().Set("Content-Type", prior.ContentType)
				}
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(prior.Status)
				_, _ = w.Write(prior.Body)
				return
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			// 5xx responses are not recorded so the client can retry with the same key.
			if capture.status >= http.StatusInternalServerError {
				return
			}
			payload, err := json.Marshal(storedResponse{
				Status:      capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				RequestHash: hash,
			})
			if err == nil {
				_, err = store.SetNX(ctx, redisKey, string(payload), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(ctx, "idempotency.persist_failed", err)
			}
		})
	}
}

// idempotencyScope keys signed-in callers by user id and guests by client IP, per path.
func idempotencyScope(r *http.Request) string {
	actor := UserIDFromContext(r.Context())
	if actor == "" {
		actor = "guest:" + clientIP(r)
	}
	return actor + "|" + r.Method + "|" + r.URL.Path
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
