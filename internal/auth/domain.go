package auth

import (
	"context"

	"github.com/reservo/reservo/internal/accounts"
	"github.com/reservo/reservo/internal/shared"
)

// CredentialStore is the subset of the accounts service used by auth.
type CredentialStore interface {
	Register(ctx context.Context, identifier, displayName, password string) (accounts.Account, error)
	Verify(ctx context.Context, identifier, password string) (accounts.Account, error)
	Lookup(ctx context.Context, identifier string) (accounts.Account, error)
}

// Profile is the signed-in caller as shown on the home view. Role is the
// session snapshot, not the account's current value.
type Profile struct {
	shared.Principal
	DisplayName string
}

// SessionRepository persists sessions keyed by token.
type SessionRepository interface {
	Save(ctx context.Context, sess shared.Session) error
	Load(ctx context.Context, token string) (shared.Session, error)
	Delete(ctx context.Context, token string) error
}
