package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Role is the privilege level captured on an account and snapshotted into sessions.
type Role string

const (
	// RoleRegular is the default role assigned at signup.
	RoleRegular Role = "regular"
	// RoleAdmin may list every reservation.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRegular || r == RoleAdmin
}

// Session binds an opaque token to an identity. Role is the value at login time
// and is trusted for the session's lifetime.
type Session struct {
	Token      string    `json:"-"`
	Identifier string    `json:"identifier"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// ErrSessionExists is returned by Save when the token is already bound.
var ErrSessionExists = errors.New("session token already bound")

// SessionStore keeps sessions in Redis under a keyed digest of the token.
type SessionStore struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionStore {
	return &SessionStore{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Save persists a new session. It never overwrites an existing token.
func (s *SessionStore) Save(ctx context.Context, sess Session) error {
	if sess.Token == "" {
		return errors.New("session token required")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.redisKey(sess.Token), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("shared/session: save: %w", err)
	}
	if !ok {
		return ErrSessionExists
	}
	return nil
}

// Load returns the session bound to token, or ErrNoSession.
func (s *SessionStore) Load(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	payload, err := s.client.Get(ctx, s.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("shared/session: load: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return Session{}, fmt.Errorf("shared/session: decode: %w", err)
	}
	sess.Token = token
	return sess, nil
}

// Delete removes the session. Deleting an absent token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("shared/session: delete: %w", err)
	}
	return nil
}

// WriteCookie sets the session cookie on the response.
func (s *SessionStore) WriteCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(s.ttl),
	})
}

// ClearCookie expires the session cookie.
func (s *SessionStore) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// TokenFromRequest extracts the session token from the bearer header or the
// cookie. fromCookie is set when the browser supplied the token implicitly.
func (s *SessionStore) TokenFromRequest(r *http.Request) (token string, fromCookie bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		if bearer, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(bearer), false
		}
	}
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// TTL exposes the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (s *SessionStore) CookieName() string {
	return s.cookieName
}

// redisKey never stores the raw token so a Redis dump cannot be replayed.
func (s *SessionStore) redisKey(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(token))
	return "session:" + hex.EncodeToString(mac.Sum(nil))
}
