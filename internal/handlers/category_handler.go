package handlers

import (
	"errors"

	"virtualvault/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service *services.CategoryService
	logger  *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

// RegisterRoutes registers the category routes.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	categoryRoutes := router.Group("/category")
	categoryRoutes.Post("/create-category", guards.admin(h.HandleCreate)...)
	categoryRoutes.Put("/update-category/:id", guards.admin(h.HandleUpdate)...)
	categoryRoutes.Get("/get-category", h.HandleList)
	categoryRoutes.Get("/single-category/:slug", h.HandleGetBySlug)
	categoryRoutes.Delete("/delete-category/:id", guards.admin(h.HandleDelete)...)
}

// CategoryRequest is the body of a category create or update.
type CategoryRequest struct {
	Name string `json:"name"`
}

// HandleCreate adds a category.
func (h *CategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}

	category, err := h.service.Create(c.UserContext(), req.Name)
	if err != nil {
		return h.categoryError(c, err, "Error in category")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "New category created",
		"category": category,
	})
}

// HandleUpdate renames a category.
func (h *CategoryHandler) HandleUpdate(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}

	category, err := h.service.Update(c.UserContext(), c.Params("id"), req.Name)
	if err != nil {
		return h.categoryError(c, err, "Error while updating category")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Category Updated Successfully",
		"category": category,
	})
}

// HandleList returns every category.
func (h *CategoryHandler) HandleList(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "Error while getting all categories")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Get All Categories Successfully",
		"category": categories,
	})
}

// HandleGetBySlug returns one category; category is null when none matches.
func (h *CategoryHandler) HandleGetBySlug(c *fiber.Ctx) error {
	category, err := h.service.BySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err, "Error while getting single category")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Get Single Category Successfully",
		"category": category,
	})
}

// HandleDelete removes a category.
func (h *CategoryHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "Error while deleting category")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Category Deleted Successfully",
	})
}

// categoryError answers validation failures as {message}, the shape the
// admin form reads.
func (h *CategoryHandler) categoryError(c *fiber.Ctx, err error, fallback string) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": verr.Message})
	}
	return respondError(c, h.logger, err, fallback)
}
