package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"virtualvault/internal/models"
	"virtualvault/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	productRoutes := router.Group("/product")
	productRoutes.Post("/create-product", guards.admin(h.HandleCreate)...)
	productRoutes.Put("/update-product/:pid", guards.admin(h.HandleUpdate)...)
	productRoutes.Get("/get-product", h.HandleHome)
	productRoutes.Get("/get-product/:slug", h.HandleGetBySlug)
	productRoutes.Get("/product-photo/:pid", h.HandlePhoto)
	productRoutes.Delete("/delete-product/:pid", guards.admin(h.HandleDelete)...)
	productRoutes.Post("/product-filters", h.HandleFilter)
	productRoutes.Get("/product-count", h.HandleCount)
	productRoutes.Get("/product-list/:page", h.HandlePage)
	productRoutes.Get("/search/:keyword", h.HandleSearch)
	productRoutes.Get("/related-product/:pid/:cid", h.HandleRelated)
	productRoutes.Get("/product-category/:slug", h.HandleByCategory)
}

// productInput reads the admin form. The photo is read up to one byte past
// the size limit so oversized uploads can be rejected.
func productInput(c *fiber.Ctx) (services.ProductInput, error) {
	in := services.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Category:    c.FormValue("category"),
		Quantity:    c.FormValue("quantity"),
		Shipping:    c.FormValue("shipping"),
	}

	form, err := c.MultipartForm()
	if err != nil {
		return in, nil
	}
	files := form.File["photo"]
	if len(files) == 0 {
		return in, nil
	}
	file, err := files[0].Open()
	if err != nil {
		return in, fmt.Errorf("failed to open photo: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, models.MaxPhotoSize+1))
	if err != nil {
		return in, fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) == 0 {
		return in, nil
	}
	contentType := files[0].Header.Get(fiber.HeaderContentType)
	if contentType == "" || contentType == fiber.MIMEOctetStream {
		contentType = http.DetectContentType(data)
	}
	in.Photo = &models.Photo{Data: data, ContentType: contentType}
	return in, nil
}

// productError answers validation failures as {error}, the shape the admin
// form reads.
func (h *ProductHandler) productError(c *fiber.Ctx, err error, fallback string) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Message})
	}
	return respondError(c, h.logger, err, fallback)
}

// HandleCreate adds a product from a multipart form.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	in, err := productInput(c)
	if err != nil {
		return badBody(c, h.logger, err)
	}
	product, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return h.productError(c, err, "Error in creating product")
	}
	h.logger.Info("product created", zap.String("product_id", product.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Product Created Successfully",
		"products": product,
	})
}

// HandleUpdate replaces the fields of a product. The photo changes only when
// a new one is uploaded.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	in, err := productInput(c)
	if err != nil {
		return badBody(c, h.logger, err)
	}
	product, err := h.service.Update(c.UserContext(), c.Params("pid"), in)
	if err != nil {
		return h.productError(c, err, "Error in updating product")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Product Updated Successfully",
		"products": product,
	})
}

// HandleHome returns the newest products.
func (h *ProductHandler) HandleHome(c *fiber.Ctx) error {
	products, err := h.service.Home(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "Error in getting products")
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"counTotal": len(products),
		"message":   "All Products",
		"products":  products,
	})
}

// HandleGetBySlug returns one product.
func (h *ProductHandler) HandleGetBySlug(c *fiber.Ctx) error {
	product, err := h.service.BySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err, "Error while getting single product")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Single Product Fetched",
		"product": product,
	})
}

// HandlePhoto streams the stored product image.
func (h *ProductHandler) HandlePhoto(c *fiber.Ctx) error {
	photo, err := h.service.Photo(c.UserContext(), c.Params("pid"))
	if err != nil {
		return respondError(c, h.logger, err, "Error while getting photo")
	}
	c.Set(fiber.HeaderContentType, photo.ContentType)
	return c.Send(photo.Data)
}

// HandleDelete removes a product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("pid")); err != nil {
		return respondError(c, h.logger, err, "Error while deleting product")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product Deleted successfully",
	})
}

// FilterRequest selects products by category and a [min, max] price range.
type FilterRequest struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
}

// HandleFilter returns the products matching the filters.
func (h *ProductHandler) HandleFilter(c *fiber.Ctx) error {
	var req FilterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	products, err := h.service.Filter(c.UserContext(), req.Checked, req.Radio)
	if err != nil {
		return respondError(c, h.logger, err, "Error while filtering products")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

// HandleCount returns the number of products.
func (h *ProductHandler) HandleCount(c *fiber.Ctx) error {
	total, err := h.service.Count(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "Error in product count")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"total":   total,
	})
}

// HandlePage returns one page of products. Missing or malformed pages mean 1.
func (h *ProductHandler) HandlePage(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Params("page"))
	if err != nil || page < 1 {
		page = 1
	}
	products, err := h.service.Page(c.UserContext(), page)
	if err != nil {
		return respondError(c, h.logger, err, "Error in per page ctrl")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

// HandleSearch returns products whose name or description contains the keyword.
func (h *ProductHandler) HandleSearch(c *fiber.Ctx) error {
	keyword, err := url.PathUnescape(c.Params("keyword"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid search keyword")
	}
	products, err := h.service.Search(c.UserContext(), keyword)
	if err != nil {
		return respondError(c, h.logger, err, "Error In Search Product API")
	}
	return c.JSON(products)
}

// HandleRelated returns other products of the same category.
func (h *ProductHandler) HandleRelated(c *fiber.Ctx) error {
	products, err := h.service.Related(c.UserContext(), c.Params("pid"), c.Params("cid"))
	if err != nil {
		return respondError(c, h.logger, err, "Error while getting related product")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

// HandleByCategory returns a category with its products.
func (h *ProductHandler) HandleByCategory(c *fiber.Ctx) error {
	category, products, err := h.service.ByCategory(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err, "Error while getting products")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"category": category,
		"products": products,
	})
}
