// Package services contains server-side business logic: account lifecycle,
// authentication, avatar storage and directory reconciliation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/users"
)

// bcryptCost matches the work factor the accounts were originally hashed
// with; raising it only affects newly written hashes.
const bcryptCost = 10

// Upload is an optional file attached to a create/update request.
type Upload struct {
	Name    string
	Content io.Reader
}

// CreateUserRequest carries the fields accepted when registering an account.
type CreateUserRequest struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// UpdateUserRequest carries a partial profile update. Nil fields are left
// untouched; a non-nil Password is re-hashed before storage.
type UpdateUserRequest struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
}

// UserService provides account operations:
//   - Register/Update/Delete: account lifecycle with optional avatar upload
//   - Authenticate: verify credentials and mint a token
//   - Get/List: lookups
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	avatars               AvatarStore
	logger                logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories, avatar storage
// and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, avatars AvatarStore, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		avatars:               avatars,
		logger:                logger,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new account. The plaintext password never reaches the
// repository: it is hashed here and discarded.
func (s *UserService) Register(ctx context.Context, req CreateUserRequest, avatar *Upload) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	if avatar != nil {
		key, err := s.avatars.Save(ctx, avatar.Name, avatar.Content)
		if err != nil {
			return nil, fmt.Errorf("error storing avatar: %w", err)
		}
		user.Avatar = &key
	}

	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the (email, password) pair and, on success, returns
// the account together with a signed token. Unknown email and wrong password
// are indistinguishable to the caller; the distinction is only logged.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "login failed: unknown email", "email", email)
			return nil, "", common.ErrorInvalidCredentials
		}
		return nil, "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug(ctx, "login failed: wrong password", "email", email)
		return nil, "", common.ErrorInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// Get returns the account with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// List returns all accounts.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// Update applies a partial profile update. A request without a password
// leaves the stored hash untouched.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest, avatar *Upload) (*models.User, error) {
	patch := users.Patch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if req.Password != nil {
		if *req.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", common.ErrorValidation)
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	if avatar != nil {
		key, err := s.avatars.Save(ctx, avatar.Name, avatar.Content)
		if err != nil {
			return nil, fmt.Errorf("error storing avatar: %w", err)
		}
		patch.Avatar = &key
	}

	return s.repomanager.Users(s.db).Update(ctx, id, patch)
}

// Delete removes the account with the given id. Deleting an absent id
// fails with common.ErrorNotFound.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}
