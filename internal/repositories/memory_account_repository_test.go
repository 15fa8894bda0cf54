package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/classgate/classgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	account := &models.Account{
		Email:        "alice@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleStudent,
	}

	require.NoError(t, repo.Create(ctx, account))
	assert.Equal(t, 1, account.ID)

	found, err := repo.FindByEmailAndRole(ctx, "alice@example.com", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, "alice@example.com", found.Email)
	assert.Equal(t, models.RoleStudent, found.Role)
}

func TestMemoryAccountRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	first := &models.Account{Email: "alice@example.com", PasswordHash: "h1", Role: models.RoleStudent}
	require.NoError(t, repo.Create(ctx, first))

	// Same email under the other role still collides, the email is globally
	// unique.
	second := &models.Account{Email: "alice@example.com", PasswordHash: "h2", Role: models.RoleTeacher}
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryAccountRepository_WrongRoleIsNotFound(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	account := &models.Account{Email: "alice@example.com", PasswordHash: "h", Role: models.RoleStudent}
	require.NoError(t, repo.Create(ctx, account))

	found, err := repo.FindByEmailAndRole(ctx, "alice@example.com", models.RoleTeacher)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Nil(t, found)
}

func TestMemoryAccountRepository_ConcurrentCreateSameEmail(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	const attempts = 16
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &models.Account{
				Email:        "race@example.com",
				PasswordHash: "h",
				Role:         models.RoleStudent,
			})
		}(i)
	}
	wg.Wait()

	// Exactly one registration wins, the rest get the duplicate error.
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateEmail)
		}
	}
	assert.Equal(t, 1, successes)
}
