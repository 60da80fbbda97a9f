package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
)

type replayStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (s *replayStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *replayStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.data[key]; taken {
		return false, nil
	}
	s.data[key], _ = value.(string)
	return true, nil
}

func (s *replayStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *replayStore) IdempotencyKey(scope, id string) string { return "idem:" + scope + ":" + id }

// idemHarness counts how often the wrapped handler actually runs.
type idemHarness struct {
	handler http.Handler
	calls   int
	status  func(call int) int
}

func newIdemHarness(ttl time.Duration) *idemHarness {
	h := &idemHarness{status: func(int) int { return http.StatusCreated }}
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(h.status(h.calls))
		_, _ = w.Write([]byte(`{"data":{"order":1}}`))
	})
	h.handler = Idempotency(&replayStore{data: map[string]string{}}, ttl, nil)(inner)
	return h
}

func (h *idemHarness) send(method, path, key, remote, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	if remote != "" {
		req.RemoteAddr = remote
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyRequiresKey(t *testing.T) {
	h := newIdemHarness(OrderIdempotencyTTL)
	rec := h.send(http.MethodPost, "/api/v1/orders", "", "", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, h.calls)
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	h := newIdemHarness(OrderIdempotencyTTL)
	first := h.send(http.MethodPost, "/api/v1/orders", "order-7", "", `{"items":[1]}`)
	require.Equal(t, http.StatusCreated, first.Code)
	require.Empty(t, first.Header().Get("Idempotent-Replayed"))

	again := h.send(http.MethodPost, "/api/v1/orders", "order-7", "", `{"items":[1]}`)
	require.Equal(t, http.StatusCreated, again.Code)
	require.Equal(t, "true", again.Header().Get("Idempotent-Replayed"))
	require.Equal(t, "application/json", again.Header().Get("Content-Type"))
	require.JSONEq(t, first.Body.String(), again.Body.String())
	require.Equal(t, 1, h.calls)
}

func TestIdempotencyRejectsChangedBody(t *testing.T) {
	h := newIdemHarness(OrderIdempotencyTTL)
	h.send(http.MethodPost, "/api/v1/orders", "order-8", "", `{"items":[1]}`)
	rec := h.send(http.MethodPost, "/api/v1/orders", "order-8", "", `{"items":[2]}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, string(pkgerrors.CodeIdempotency), payload.Error.Code)
	require.Equal(t, 1, h.calls)
}

func TestIdempotencyRetriesServerFailures(t *testing.T) {
	h := newIdemHarness(OrderIdempotencyTTL)
	h.status = func(call int) int {
		if call == 1 {
			return http.StatusServiceUnavailable
		}
		return http.StatusCreated
	}
	require.Equal(t, http.StatusServiceUnavailable, h.send(http.MethodPost, "/api/v1/orders", "retry", "", `{}`).Code)
	require.Equal(t, http.StatusCreated, h.send(http.MethodPost, "/api/v1/orders", "retry", "", `{}`).Code)
	require.Equal(t, 2, h.calls)
}

func TestIdempotencyScopes(t *testing.T) {
	t.Run("guests by client address", func(t *testing.T) {
		h := newIdemHarness(OrderIdempotencyTTL)
		h.send(http.MethodPost, "/api/v1/orders", "same", "10.0.0.1:1000", `{}`)
		h.send(http.MethodPost, "/api/v1/orders", "same", "10.0.0.2:1000", `{}`)
		require.Equal(t, 2, h.calls)
	})
	t.Run("per path", func(t *testing.T) {
		h := newIdemHarness(IdempotencyTTL)
		h.send(http.MethodPost, "/api/v1/admin/content/menu", "k1", "", `{"name":"x"}`)
		h.send(http.MethodPost, "/api/v1/admin/content/team", "k1", "", `{"name":"x"}`)
		require.Equal(t, 2, h.calls)
	})
}
