package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/classgate/classgate/internal/models"
	"github.com/classgate/classgate/internal/password"
	"github.com/classgate/classgate/internal/repositories"
	"go.uber.org/zap"
)

// AccountRepository is the interface that wraps methods for account data access
type AccountRepository interface {
	// Method Create inserts a new account.
	//
	// "account" parameter carries the normalized email, password hash and role;
	// its ID field is filled in on success.
	//
	// Returns repositories.ErrDuplicateEmail if the email is already taken.
	Create(ctx context.Context, account *models.Account) error
	// Method FindByEmailAndRole retrieves an account by the composite login key.
	//
	// An email registered under a different role is not a match and returns
	// repositories.ErrAccountNotFound.
	FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.Account, error)
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// dummyHash is a fixed bcrypt hash. Login verifies against it when no
// account matched, so the failure path costs the same as a real password
// check; the result is always discarded.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// authService implements the register/login decision logic
type authService struct {
	accounts AccountRepository
	hasher   password.Hasher
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(accounts AccountRepository, hasher password.Hasher, logger *zap.Logger) *authService {
	return &authService{
		accounts: accounts,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register validates the request, hashes the password and creates the
// account. It does not log the caller in; the client is directed to the
// login entry point afterwards.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, error) {
	email, err := checkCredentials(req.Email, req.Password, req.Role)
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         req.Role,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		zap.Int("account_id", account.ID),
		zap.String("role", string(account.Role)),
	)
	return account, nil
}

// Login resolves the (email, role) key and verifies the password. Unknown
// email, wrong role and wrong password all collapse into
// ErrInvalidCredentials with uniform timing.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.Account, error) {
	email, err := checkCredentials(req.Email, req.Password, req.Role)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmailAndRole(ctx, email, req.Role)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			// Burn a hash comparison so a missing account is not
			// distinguishable from a wrong password by response time.
			s.hasher.Verify(req.Password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("login succeeded",
		zap.Int("account_id", account.ID),
		zap.String("role", string(account.Role)),
	)
	return account, nil
}

// checkCredentials validates and normalizes the credential fields shared by
// register and login
func checkCredentials(email, plaintext string, role models.Role) (string, error) {
	normalized := strings.TrimSpace(strings.ToLower(email))
	if !emailRegex.MatchString(normalized) {
		return "", fmt.Errorf("%w: invalid email format", ErrInvalidRequest)
	}
	if plaintext == "" {
		return "", fmt.Errorf("%w: password cannot be empty", ErrInvalidRequest)
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: role must be student or teacher", ErrInvalidRequest)
	}
	return normalized, nil
}
