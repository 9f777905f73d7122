package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/reservo/reservo/internal/accounts"
	"github.com/reservo/reservo/internal/shared"
)

// tokenBytes gives 256 bits of entropy per session token.
const tokenBytes = 32

const mintAttempts = 3

// Service is the session authenticator.
type Service struct {
	credentials CredentialStore
	sessions    SessionRepository
	now         func() time.Time
	random      func([]byte) (int, error)
}

// NewService constructs a new Service.
func NewService(credentials CredentialStore, sessions SessionRepository) *Service {
	return &Service{credentials: credentials, sessions: sessions, now: time.Now, random: rand.Read}
}

// Register creates a regular account. It does not log the caller in.
func (s *Service) Register(ctx context.Context, identifier, displayName, password string) (accounts.Account, error) {
	return s.credentials.Register(ctx, identifier, displayName, password)
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, identifier, password string) (shared.Session, error) {
	account, err := s.credentials.Verify(ctx, identifier, password)
	if err != nil {
		return shared.Session{}, err
	}
	return s.CreateSession(ctx, account)
}

// CreateSession mints an unguessable token bound to the account's identifier
// and a snapshot of its role.
func (s *Service) CreateSession(ctx context.Context, account accounts.Account) (shared.Session, error) {
	for attempt := 0; attempt < mintAttempts; attempt++ {
		token, err := s.mintToken()
		if err != nil {
			return shared.Session{}, err
		}
		sess := shared.Session{
			Token:      token,
			Identifier: account.Identifier,
			Role:       account.Role,
			CreatedAt:  s.now().UTC(),
		}
		err = s.sessions.Save(ctx, sess)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, shared.ErrSessionExists) {
			return shared.Session{}, err
		}
	}
	return shared.Session{}, errors.New("auth: could not mint a unique session token")
}

// Resolve maps a token to its principal without mutating anything.
func (s *Service) Resolve(ctx context.Context, token string) (shared.Principal, error) {
	sess, err := s.sessions.Load(ctx, token)
	if err != nil {
		return shared.Principal{}, err
	}
	return shared.Principal{Identifier: sess.Identifier, Role: sess.Role}, nil
}

// Authenticate gates protected operations. A missing or unknown session is
// reported as shared.ErrUnauthenticated; storage failures pass through.
func (s *Service) Authenticate(ctx context.Context, token string) (shared.Principal, error) {
	principal, err := s.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNoSession) {
			return shared.Principal{}, shared.ErrUnauthenticated
		}
		return shared.Principal{}, err
	}
	return principal, nil
}

// Profile authenticates token and loads the display name of its account. A
// session whose account no longer exists is unauthenticated.
func (s *Service) Profile(ctx context.Context, token string) (Profile, error) {
	principal, err := s.Authenticate(ctx, token)
	if err != nil {
		return Profile{}, err
	}
	account, err := s.credentials.Lookup(ctx, principal.Identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Profile{}, shared.ErrUnauthenticated
		}
		return Profile{}, fmt.Errorf("auth: profile: %w", err)
	}
	return Profile{Principal: principal, DisplayName: account.DisplayName}, nil
}

// Destroy ends a session. Destroying an absent token is not an error.
func (s *Service) Destroy(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *Service) mintToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := s.random(buf); err != nil {
		return "", fmt.Errorf("auth: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
