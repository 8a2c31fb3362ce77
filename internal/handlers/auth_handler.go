package handlers

import (
	"virtualvault/internal/middleware"
	"virtualvault/internal/models"
	"virtualvault/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication and user accounts.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	v := validator.New()
	// An address is present unless it is empty, null, "" or {}.
	_ = v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		a, ok := fl.Field().Interface().(models.Address)
		return ok && !a.IsZero()
	})
	return &AuthHandler{
		authService: authService,
		validate:    v,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", guards.limited(h.HandleRegister)...)
	authRoutes.Post("/login", guards.limited(h.HandleLogin)...)
	authRoutes.Post("/forgot-password", guards.limited(h.HandleForgotPassword)...)
	authRoutes.Get("/test", guards.admin(h.HandleTest)...)
	authRoutes.Get("/user-auth", guards.signedIn(h.HandleAuthCheck)...)
	authRoutes.Get("/admin-auth", guards.admin(h.HandleAuthCheck)...)
	authRoutes.Get("/all-users", guards.admin(h.HandleAllUsers)...)
	authRoutes.Put("/profile", guards.signedIn(h.HandleUpdateProfile)...)
}

// RegisterRequest is the body of a registration.
type RegisterRequest struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required"`
	Password string         `json:"password" validate:"required"`
	Phone    string         `json:"phone" validate:"required"`
	Address  models.Address `json:"address" validate:"address"`
	Answer   string         `json:"answer" validate:"required"`
}

var registerMessages = map[string]string{
	"Name":     "Name is Required",
	"Email":    "Email is Required",
	"Password": "Password is Required",
	"Phone":    "Phone no is Required",
	"Address":  "Address is Required",
	"Answer":   "Answer is Required",
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	if msg := firstInvalid(h.validate, req, registerMessages); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	user, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Answer:   req.Answer,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Error registering user")
	}

	h.logger.Info("user registered", zap.String("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// loginUser is the account summary returned with a token.
type loginUser struct {
	ID      string         `json:"_id"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Phone   string         `json:"phone"`
	Address models.Address `json:"address"`
	Role    int            `json:"role"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return fail(c, fiber.StatusNotFound, "Invalid email or password")
	}

	user, token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.logger, err, "Error in login")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user": loginUser{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Phone:   user.Phone,
			Address: user.Address,
			Role:    user.Role,
		},
		"token": token,
	})
}

// ForgotPasswordRequest is the body of a password reset.
type ForgotPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	Answer      string `json:"answer" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

var forgotPasswordMessages = map[string]string{
	"Email":       "Email is required",
	"Answer":      "Answer is required",
	"NewPassword": "New Password is required",
}

// HandleForgotPassword resets a password after checking the security answer.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	if msg := firstInvalid(h.validate, req, forgotPasswordMessages); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
	}

	if err := h.authService.ForgotPassword(c.UserContext(), req.Email, req.Answer, req.NewPassword); err != nil {
		return respondError(c, h.logger, err, "Something went wrong")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password Reset Successfully",
	})
}

// HandleTest answers only when the admin guard lets the request through.
func (h *AuthHandler) HandleTest(c *fiber.Ctx) error {
	return c.SendString("Protected Routes")
}

// HandleAuthCheck answers {ok:true} once the route guards have passed.
func (h *AuthHandler) HandleAuthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// HandleAllUsers lists every account, newest first.
func (h *AuthHandler) HandleAllUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "Error in getting users")
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "All users retrieved successfully",
		"users":   users,
	})
}

// ProfileRequest is the body of a profile update. The email is accepted but
// never changed.
type ProfileRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Address  models.Address `json:"address"`
	Phone    string         `json:"phone"`
}

// HandleUpdateProfile updates the signed-in user's profile.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), middleware.UserID(c), services.ProfileInput{
		Name:     req.Name,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Error while updating profile")
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Profile updated successfully",
		"updatedUser": user,
	})
}
