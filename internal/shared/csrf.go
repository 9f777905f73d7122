package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

const (
	// CSRFHeader is the request header carrying the CSRF token.
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField is the form field name carrying the CSRF token.
	CSRFFormField = "csrf_token"
)

// CSRFManager issues and verifies CSRF tokens bound to a session token.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// TokenFor derives the CSRF token for a session. The value is stable for the
// session's lifetime so clients can cache it after login.
func (m *CSRFManager) TokenFor(sessionToken string) string {
	if sessionToken == "" {
		return ""
	}
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte("csrf|"))
	_, _ = mac.Write([]byte(sessionToken))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyToken compares the supplied token with the one derived for the session.
func (m *CSRFManager) VerifyToken(ctx context.Context, sessionToken, token string) error {
	if sessionToken == "" || token == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(m.TokenFor(sessionToken)), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}
