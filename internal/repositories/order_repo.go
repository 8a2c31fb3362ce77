package repositories

import (
	"context"

	"virtualvault/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetByBuyer returns the orders placed by one user, newest first.
	GetByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	// GetAll returns every order, newest first.
	GetAll(ctx context.Context) ([]models.Order, error)
	// UpdateStatus sets the status and returns the updated order.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
}
