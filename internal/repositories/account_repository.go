package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/classgate/classgate/internal/models"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// accountRepository implements account persistence on MySQL
type accountRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB, logger *zap.Logger) *accountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new account into the database. The unique index on email
// makes the uniqueness check atomic: of two concurrent inserts with the same
// email exactly one succeeds and the other gets ErrDuplicateEmail.
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (email, password_hash, role)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, account.Email, account.PasswordHash, account.Role)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return fmt.Errorf("failed to create account: %w", ErrDuplicateEmail)
		}
		r.logger.Error("failed to create account", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	account.ID = int(id)
	return nil
}

// FindByEmailAndRole retrieves an account by the composite login key. An
// existing email registered under a different role is not a match.
func (r *accountRepository) FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, role
		FROM accounts
		WHERE email = ? AND role = ?
		LIMIT 1
	`

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, email, role).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
	)

	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		r.logger.Error("failed to find account", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return account, nil
}
