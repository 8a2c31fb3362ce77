package handlers

import (
	"errors"

	"virtualvault/internal/middleware"
	"virtualvault/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PaymentHandler handles the Braintree checkout flow.
type PaymentHandler struct {
	service *services.PaymentService
	logger  *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, logger: logger}
}

// RegisterRoutes registers the payment routes under /product.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	paymentRoutes := router.Group("/product/braintree")
	paymentRoutes.Get("/token", h.HandleToken)
	paymentRoutes.Post("/payment", guards.signedIn(h.HandlePayment)...)
}

// HandleToken returns a client token for the drop-in UI.
func (h *PaymentHandler) HandleToken(c *fiber.Ctx) error {
	token, err := h.service.ClientToken(c.UserContext())
	if err != nil {
		h.logger.Error("failed to generate client token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"clientToken": token})
}

// PaymentRequest is a checkout: the payment method nonce and the cart.
type PaymentRequest struct {
	Nonce string              `json:"nonce"`
	Cart  []services.CartItem `json:"cart"`
}

// HandlePayment charges the cart and records the order.
func (h *PaymentHandler) HandlePayment(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}

	_, err := h.service.Checkout(c.UserContext(), middleware.UserID(c), req.Nonce, req.Cart)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return fail(c, fiber.StatusBadRequest, verr.Message)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
