package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/classgate/classgate/internal/models"
)

// memoryAccountRepository is the embedded account store used when no
// DATABASE_URL is configured. It holds the same uniqueness semantics as the
// MySQL repository: the mutex makes the exists-then-insert check atomic.
type memoryAccountRepository struct {
	mu      sync.Mutex
	byEmail map[string]*models.Account
	nextID  int
}

// NewMemoryAccountRepository creates an empty in-memory account store
func NewMemoryAccountRepository() *memoryAccountRepository {
	return &memoryAccountRepository{
		byEmail: make(map[string]*models.Account),
		nextID:  1,
	}
}

// Create inserts a new account, failing with ErrDuplicateEmail if the email
// is already taken under any role.
func (r *memoryAccountRepository) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[account.Email]; exists {
		return fmt.Errorf("failed to create account: %w", ErrDuplicateEmail)
	}

	account.ID = r.nextID
	r.nextID++

	stored := *account
	r.byEmail[account.Email] = &stored
	return nil
}

// FindByEmailAndRole retrieves an account by the composite login key
func (r *memoryAccountRepository) FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, exists := r.byEmail[email]
	if !exists || account.Role != role {
		return nil, ErrAccountNotFound
	}

	found := *account
	return &found, nil
}
