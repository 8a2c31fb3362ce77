package handlers

import (
	"virtualvault/internal/middleware"
	"virtualvault/internal/models"
	"virtualvault/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the order routes. They live under /auth like the
// rest of the account endpoints.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	orderRoutes := router.Group("/auth")
	orderRoutes.Get("/orders", guards.signedIn(h.HandleGetOrders)...)
	orderRoutes.Get("/all-orders", guards.admin(h.HandleGetAllOrders)...)
	orderRoutes.Put("/order-status/:orderId", guards.admin(h.HandleUpdateOrderStatus)...)
}

// HandleGetOrders returns the orders of the signed-in user.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ForBuyer(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Error while getting orders")
	}
	return c.JSON(orders)
}

// HandleGetAllOrders returns every order, newest first.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.All(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "Error while getting orders")
	}
	return c.JSON(orders)
}

// UpdateStatusRequest is the body of an order status change.
type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// HandleUpdateOrderStatus moves an order to a new status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}

	order, err := h.service.UpdateStatus(c.UserContext(), orderID, req.Status)
	if err != nil {
		return respondError(c, h.logger, err, "Error while updating order")
	}
	h.logger.Info("order status updated", zap.String("order_id", orderID), zap.String("status", string(order.Status)))
	return c.JSON(order)
}
