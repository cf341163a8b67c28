package users

import (
	"context"

	"github.com/dmitrijs2005/userkeeper/internal/server/models"
)

// Patch describes a partial update of a user record. Nil fields are left
// untouched.
type Patch struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Avatar       *string
}

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, patch Patch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
