package editsession

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	redisclient "github.com/amanagarwal0602/randomcafe-sub001/pkg/redis"
)

// NewSessionManager builds the browser session manager. The cookie is a
// session cookie, so edit mode ends when the browser session does.
func NewSessionManager(cfg config.SessionConfig, store scs.Store, secure bool) *scs.SessionManager {
	sm := scs.New()
	if store != nil {
		sm.Store = store
	}
	sm.Lifetime = cfg.Lifetime
	sm.IdleTimeout = cfg.IdleTimeout
	if cfg.CookieName != "" {
		sm.Cookie.Name = cfg.CookieName
	}
	sm.Cookie.Persist = false
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	sm.Cookie.Path = "/"
	return sm
}

type sessionKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	BrowserSessionKey(token string) string
}

// RedisStore is an scs store that keeps session blobs in Redis.
type RedisStore struct {
	client sessionKV
}

func NewRedisStore(client *redisclient.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, s.client.BrowserSessionKey(token))
	if err != nil {
		if redisclient.IsMiss(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (s *RedisStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return s.DeleteCtx(ctx, token)
	}
	return s.client.Set(ctx, s.client.BrowserSessionKey(token), b, ttl)
}

func (s *RedisStore) DeleteCtx(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.client.BrowserSessionKey(token))
}

func (s *RedisStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

func (s *RedisStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

func (s *RedisStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

var _ scs.CtxStore = (*RedisStore)(nil)
