package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/reservo/reservo/internal/shared"
)

// MemoryRepository keeps accounts in process memory. It backs the "memory"
// storage driver and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
	now      func() time.Time
}

// NewMemoryRepository constructs an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]Account), now: time.Now}
}

// Insert checks and stores under one write lock.
func (r *MemoryRepository) Insert(ctx context.Context, account Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.Identifier]; exists {
		return Account{}, shared.ErrDuplicateIdentifier
	}
	account.CreatedAt = r.now().UTC()
	r.accounts[account.Identifier] = account
	return account, nil
}

// FindByIdentifier returns a copy of the stored account.
func (r *MemoryRepository) FindByIdentifier(ctx context.Context, identifier string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[identifier]
	if !ok {
		return Account{}, shared.ErrNotFound
	}
	return account, nil
}

// Len reports the number of stored accounts.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

var _ RepositoryPort = (*MemoryRepository)(nil)
