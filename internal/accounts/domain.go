package accounts

import (
	"time"

	"github.com/reservo/reservo/internal/shared"
)

// Account is a registered identity. Identifier is unique and immutable.
type Account struct {
	Identifier   string
	DisplayName  string
	PasswordHash string
	Role         shared.Role
	CreatedAt    time.Time
}

// IsAdmin reports whether the account holds the admin role.
func (a Account) IsAdmin() bool {
	return a.Role == shared.RoleAdmin
}
