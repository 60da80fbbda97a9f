package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	redisclient "github.com/amanagarwal0602/randomcafe-sub001/pkg/redis"
	"github.com/google/uuid"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errMissingAccessID     = errors.New("session: access id is required")
)

type kv interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is what the auth middleware needs to reject tokens
// whose session was revoked or rotated away.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// record is stored under the access id (the JWT jti). Only a digest of the
// refresh token is kept, so a Redis dump cannot be replayed.
type record struct {
	Digest   string    `json:"digest"`
	UserID   uuid.UUID `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// Rotation is a fresh access id and refresh token pair for UserID.
type Rotation struct {
	AccessID     string
	RefreshToken string
	UserID       uuid.UUID
}

// Manager issues single-use refresh tokens, one per access id.
type Manager struct {
	store kv
	keyer sessionKeyer
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("session: redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("session: refresh ttl %s must be longer than access ttl %s", ttl, accessTTL)
	}
	return &Manager{store: client, keyer: client, ttl: ttl, now: time.Now}, nil
}

// NewAccessID mints the identifier shared by a JWT's jti and its session key.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errMissingAccessID
	}
	if userID == uuid.Nil {
		return "", errors.New("session: user id is required")
	}
	return m.issue(ctx, accessID, userID)
}

// Rotate exchanges a refresh token for a new pair. The old session is
// deleted before the new one is written, so a token can be redeemed once.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (*Rotation, error) {
	if strings.TrimSpace(oldAccessID) == "" || provided == "" {
		return nil, ErrInvalidRefreshToken
	}
	key := m.keyer.AccessSessionKey(oldAccessID)

	raw, err := m.store.Get(ctx, key)
	if redisclient.IsMiss(err) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var rec record
	if json.Unmarshal([]byte(raw), &rec) != nil || rec.UserID == uuid.Nil {
		return nil, ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(rec.Digest), []byte(digest(provided))) != 1 {
		return nil, ErrInvalidRefreshToken
	}

	if err := m.store.Del(ctx, key); err != nil {
		return nil, fmt.Errorf("session: retire: %w", err)
	}
	next := NewAccessID()
	token, err := m.issue(ctx, next, rec.UserID)
	if err != nil {
		return nil, err
	}
	return &Rotation{AccessID: next, RefreshToken: token, UserID: rec.UserID}, nil
}

// Revoke ends the session; later refreshes and bearer checks for accessID fail.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errMissingAccessID
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errMissingAccessID
	}
	_, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	switch {
	case redisclient.IsMiss(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (m *Manager) issue(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session: token entropy: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	payload, err := json.Marshal(record{Digest: digest(token), UserID: userID, IssuedAt: m.now().UTC()})
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), string(payload), m.ttl); err != nil {
		return "", fmt.Errorf("session: store: %w", err)
	}
	return token, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
