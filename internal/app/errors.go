package app

import (
	"errors"
	"strings"

	"virtualvault/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const productPrefix = "/api/v1/product/"

// errorHandler answers errors that escape the handlers (unknown routes,
// oversized bodies, recovered panics) in the API's JSON error shape.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ferr *fiber.Error
		if !errors.As(err, &ferr) {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Internal server error",
			})
		}

		message := ferr.Message
		if ferr.Code == fiber.StatusRequestEntityTooLarge && strings.HasPrefix(c.Path(), productPrefix) {
			message = services.PhotoTooLarge
		}
		return c.Status(ferr.Code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
