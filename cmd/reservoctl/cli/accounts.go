// Package cli holds the operations behind reservoctl subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/reservo/reservo/internal/accounts"
	"github.com/reservo/reservo/internal/shared"
)

// Provisioner creates accounts with an explicit role.
type Provisioner interface {
	Provision(ctx context.Context, identifier, displayName, password string, role shared.Role) (accounts.Account, error)
}

// CreateAdmin provisions an admin account and reports it on w.
func CreateAdmin(ctx context.Context, p Provisioner, w io.Writer, identifier, displayName, password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	account, err := p.Provision(ctx, identifier, displayName, password, shared.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(w, "admin %s created\n", account.Identifier)
	return nil
}

// SeedAccounts provisions a regular account per identifier, skipping those
// that already exist.
func SeedAccounts(ctx context.Context, p Provisioner, w io.Writer, identifiers []string, password string) (created int, err error) {
	if password == "" {
		return 0, errors.New("password is required")
	}
	for _, id := range identifiers {
		account, err := p.Provision(ctx, id, id, password, shared.RoleRegular)
		switch {
		case errors.Is(err, shared.ErrDuplicateIdentifier):
			fmt.Fprintf(w, "→ %s exists, skipped\n", id)
			continue
		case err != nil:
			return created, fmt.Errorf("seed %s: %w", id, err)
		}
		created++
		fmt.Fprintf(w, "→ %s created\n", account.Identifier)
	}
	return created, nil
}
