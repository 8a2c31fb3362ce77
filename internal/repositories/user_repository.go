package repositories

import (
	"context"

	"virtualvault/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByIDs returns the users found among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// GetAll returns every user, newest first.
	GetAll(ctx context.Context) ([]models.User, error)
}
