package services

import (
	"context"
	"fmt"
	"strings"

	"virtualvault/internal/models"
	"virtualvault/internal/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartItem is one line of the checkout cart. Price accepts JSON numbers and
// numeric strings.
type CartItem struct {
	ID    string          `json:"_id"`
	Price decimal.Decimal `json:"price"`
}

// PaymentService charges carts through the payment gateway and records orders.
type PaymentService struct {
	gateway payment.Gateway
	orders  *OrderService
	logger  *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(gateway payment.Gateway, orders *OrderService, logger *zap.Logger) *PaymentService {
	return &PaymentService{gateway: gateway, orders: orders, logger: logger}
}

// ClientToken returns a token the browser drop-in uses to tokenize cards.
func (s *PaymentService) ClientToken(ctx context.Context) (string, error) {
	return s.gateway.ClientToken(ctx)
}

// CartTotal sums the cart prices exactly.
func CartTotal(cart []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart {
		total = total.Add(item.Price)
	}
	return total
}

// Checkout charges the cart total to nonce and stores the paid order.
func (s *PaymentService) Checkout(ctx context.Context, buyerID, nonce string, cart []CartItem) (*models.Order, error) {
	if strings.TrimSpace(nonce) == "" {
		return nil, invalid("Payment nonce is required")
	}
	if len(cart) == 0 {
		return nil, invalid("Cart is empty")
	}
	productIDs := make([]string, len(cart))
	for i, item := range cart {
		if item.ID == "" {
			return nil, invalid("Cart item id is required")
		}
		if item.Price.IsNegative() {
			return nil, invalid("Cart item price must not be negative")
		}
		productIDs[i] = item.ID
	}

	total := CartTotal(cart)
	result, err := s.gateway.Sale(ctx, total, nonce)
	if err != nil {
		s.logger.Error("payment sale failed", zap.String("buyer_id", buyerID), zap.String("amount", total.StringFixed(2)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	order, err := s.orders.Create(ctx, buyerID, productIDs, *result)
	if err != nil {
		// The card was charged; keep enough context to reconcile by hand.
		s.logger.Error("order not stored after successful payment",
			zap.String("buyer_id", buyerID),
			zap.String("transaction_id", result.TransactionID),
			zap.Error(err),
		)
		return nil, err
	}
	return order, nil
}
