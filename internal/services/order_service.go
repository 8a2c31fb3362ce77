package services

import (
	"context"
	"errors"
	"fmt"

	"virtualvault/internal/events"
	"virtualvault/internal/models"
	"virtualvault/internal/repositories"

	"go.uber.org/zap"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	publisher   events.Publisher
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create stores a paid order and announces it.
func (s *OrderService) Create(ctx context.Context, buyerID string, productIDs []string, payment models.Payment) (*models.Order, error) {
	order := &models.Order{
		ProductIDs: productIDs,
		Payment:    payment,
		BuyerID:    buyerID,
		Status:     models.StatusNotProcess,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("buyer_id", buyerID),
		zap.String("transaction_id", payment.TransactionID),
	)
	events.PublishQuietly(ctx, s.publisher, s.logger, events.Event{
		Type:    events.TypeOrderCreated,
		OrderID: order.ID,
		BuyerID: order.BuyerID,
		Status:  string(order.Status),
		Amount:  payment.Amount,
	})
	return order, nil
}

// ForBuyer returns the populated orders of one user, newest first.
func (s *OrderService) ForBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	orders, err := s.orderRepo.GetByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders of %s: %w", buyerID, err)
	}
	return s.populate(ctx, orders)
}

// All returns every populated order, newest first.
func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return s.populate(ctx, orders)
}

// UpdateStatus moves an order to status and returns the populated order.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}

	events.PublishQuietly(ctx, s.publisher, s.logger, events.Event{
		Type:    events.TypeOrderStatusUpdated,
		OrderID: order.ID,
		BuyerID: order.BuyerID,
		Status:  string(order.Status),
	})

	populated, err := s.populate(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

// populate attaches products (without photos) and buyer names. Products
// keep the cart order and duplicates; deleted products are left out.
func (s *OrderService) populate(ctx context.Context, orders []models.Order) ([]models.Order, error) {
	if orders == nil {
		return []models.Order{}, nil
	}

	var productIDs, buyerIDs []string
	seenProduct := map[string]bool{}
	seenBuyer := map[string]bool{}
	for _, o := range orders {
		for _, id := range o.ProductIDs {
			if !seenProduct[id] {
				seenProduct[id] = true
				productIDs = append(productIDs, id)
			}
		}
		if !seenBuyer[o.BuyerID] {
			seenBuyer[o.BuyerID] = true
			buyerIDs = append(buyerIDs, o.BuyerID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load order products: %w", err)
	}
	productByID := make(map[string]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	users, err := s.userRepo.GetByIDs(ctx, buyerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load order buyers: %w", err)
	}
	buyerByID := make(map[string]*models.UserRef, len(users))
	for _, u := range users {
		buyerByID[u.ID] = &models.UserRef{ID: u.ID, Name: u.Name}
	}

	for i := range orders {
		list := make([]models.Product, 0, len(orders[i].ProductIDs))
		for _, id := range orders[i].ProductIDs {
			if p, ok := productByID[id]; ok {
				list = append(list, p)
			}
		}
		orders[i].Products = list
		orders[i].Buyer = buyerByID[orders[i].BuyerID]
	}
	return orders, nil
}
