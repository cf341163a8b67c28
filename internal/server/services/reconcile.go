package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/directory"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/users"
)

// DirectoryClient lists the externally sourced identity records.
type DirectoryClient interface {
	ListUsers(ctx context.Context) ([]directory.User, error)
}

// ReconcileResult reports how many records a reconciliation run created
// and overwrote.
type ReconcileResult struct {
	Created int
	Updated int
}

// ReconcileService merges the external listing into the store, matching
// records by email. The batch is not transactional: a failure partway
// through leaves earlier writes committed. Concurrent runs are not
// coordinated against each other; the unique constraint on email is the
// only arbiter.
type ReconcileService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	directory       DirectoryClient
	logger          logging.Logger
	defaultPassword string
}

func NewReconcileService(db *sql.DB, m repomanager.RepositoryManager, client DirectoryClient, cfg *config.Config, logger logging.Logger) *ReconcileService {
	return &ReconcileService{
		db:              db,
		repomanager:     m,
		directory:       client,
		logger:          logger,
		defaultPassword: cfg.DefaultUserPassword,
	}
}

// Run fetches the external listing and upserts it in input order.
// New records get the hashed placeholder secret; records matched by email
// get only their profile fields overwritten, never the stored password.
func (s *ReconcileService) Run(ctx context.Context) (*ReconcileResult, error) {
	externals, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	placeholderHash, err := hashPassword(s.defaultPassword)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	result := &ReconcileResult{}

	for _, ext := range externals {
		existing, err := repo.GetByEmail(ctx, ext.Email)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error reconciling %s: %w", ext.Email, err)
		}

		if existing == nil {
			user := &models.User{
				Email:        ext.Email,
				PasswordHash: placeholderHash,
				FirstName:    optional(ext.FirstName),
				LastName:     optional(ext.LastName),
				Avatar:       optional(ext.Avatar),
			}

			if _, err := repo.Create(ctx, user); err != nil {
				return nil, fmt.Errorf("error reconciling %s: %w", ext.Email, err)
			}
			result.Created++
			continue
		}

		patch := users.Patch{
			FirstName: optional(ext.FirstName),
			LastName:  optional(ext.LastName),
			Avatar:    optional(ext.Avatar),
		}

		if _, err := repo.Update(ctx, existing.ID, patch); err != nil {
			return nil, fmt.Errorf("error reconciling %s: %w", ext.Email, err)
		}
		result.Updated++
	}

	s.logger.Info(ctx, "reconciliation finished", "created", result.Created, "updated", result.Updated)

	return result, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
