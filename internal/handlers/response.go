package handlers

import (
	"errors"

	"virtualvault/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Guards are the middlewares protecting routes. Handlers attach them per route.
type Guards struct {
	SignIn    fiber.Handler
	Admin     fiber.Handler
	RateLimit fiber.Handler
}

func (g Guards) signedIn(h fiber.Handler) []fiber.Handler {
	return []fiber.Handler{g.SignIn, h}
}

func (g Guards) admin(h fiber.Handler) []fiber.Handler {
	return []fiber.Handler{g.SignIn, g.Admin, h}
}

func (g Guards) limited(h fiber.Handler) []fiber.Handler {
	if g.RateLimit == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{g.RateLimit, h}
}

// publicMessages are the client-facing texts of the service errors.
var publicMessages = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrEmailTaken, fiber.StatusConflict, "User with that email already exists, please login"},
	{services.ErrEmailNotRegistered, fiber.StatusNotFound, "Email is not registered"},
	{services.ErrInvalidPassword, fiber.StatusUnauthorized, "Invalid Password"},
	{services.ErrWrongEmailOrAnswer, fiber.StatusNotFound, "Wrong Email Or Answer"},
	{services.ErrInvalidToken, fiber.StatusUnauthorized, "Invalid or expired token"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "User not found"},
	{services.ErrCategoryExists, fiber.StatusConflict, "Category already exists"},
	{services.ErrCategoryNotFound, fiber.StatusNotFound, "Category not found"},
	{services.ErrProductNotFound, fiber.StatusNotFound, "Product not found"},
	{services.ErrPhotoNotFound, fiber.StatusNotFound, "Photo not found"},
	{services.ErrOrderNotFound, fiber.StatusNotFound, "Order not found"},
	{services.ErrInvalidStatus, fiber.StatusBadRequest, "Invalid order status"},
}

// classify maps a service error to its status and client message. ok is
// false for unexpected failures.
func classify(err error) (status int, message string, ok bool) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, verr.Message, true
	}
	for _, m := range publicMessages {
		if errors.Is(err, m.err) {
			return m.status, m.message, true
		}
	}
	return fiber.StatusInternalServerError, "", false
}

// respondError writes err as {success:false, message}. Unexpected failures
// are logged and answered with 500 and the fallback message.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	status, message, ok := classify(err)
	if !ok {
		logger.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fallback,
			"error":   err.Error(),
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func badBody(c *fiber.Ctx, logger *zap.Logger, err error) error {
	logger.Debug("invalid request body", zap.String("path", c.Path()), zap.Error(err))
	return fail(c, fiber.StatusBadRequest, "Invalid request body")
}

// firstInvalid validates s and returns the message of the first failing
// field, looked up in messages. It returns "" when s is valid.
func firstInvalid(v *validator.Validate, s any, messages map[string]string) string {
	err := v.Struct(s)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := messages[verrs[0].Field()]; ok {
			return msg
		}
		return verrs[0].Field() + " is invalid"
	}
	return err.Error()
}
