package middleware

import (
	"context"
	"strings"

	"virtualvault/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserIDKey is the fiber.Ctx Locals key holding the authenticated user id.
const UserIDKey = "user_id"

// TokenValidator turns a token into the id of the user it was issued to.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// UserFinder loads a user by id.
type UserFinder interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// RequireSignIn is a Fiber middleware to check for a valid JWT token.
// The Authorization header carries the raw token; a "Bearer " prefix is accepted.
func RequireSignIn(tokens TokenValidator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
		if tokenString == "" {
			return unauthorized(c, "Invalid or expired token")
		}

		userID, err := tokens.ValidateToken(tokenString)
		if err != nil {
			logger.Debug("JWT validation failed", zap.String("path", c.Path()), zap.Error(err))
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// IsAdmin rejects users without the admin role. It must run after RequireSignIn.
func IsAdmin(users UserFinder, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		user, err := users.GetUser(c.UserContext(), userID)
		if err != nil {
			logger.Warn("admin check failed", zap.String("user_id", userID), zap.Error(err))
			return unauthorized(c, "Error in admin middleware")
		}
		if !user.IsAdmin() {
			return unauthorized(c, "UnAuthorized Access")
		}
		return c.Next()
	}
}

// UserID returns the id stored by RequireSignIn, or "" when there is none.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
