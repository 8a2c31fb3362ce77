// Package app wires the services, middleware and HTTP handlers into a Fiber app.
package app

import (
	"context"
	"time"

	"virtualvault/internal/cache"
	"virtualvault/internal/config"
	"virtualvault/internal/events"
	"virtualvault/internal/handlers"
	"virtualvault/internal/logging"
	"virtualvault/internal/middleware"
	"virtualvault/internal/payment"
	"virtualvault/internal/repositories"
	"virtualvault/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// bodyLimit leaves room for multipart forms carrying an oversized photo, so
// they are rejected with a validation message. Bodies over the limit never
// reach a handler and are answered by errorHandler with 413.
const bodyLimit = 8 * 1024 * 1024

// Deps are the long-lived resources the HTTP app is built from.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *repositories.Store
	Cache   cache.Cache
	Events  events.Publisher
	Gateway payment.Gateway
	// EventsDriver names the event transport in /health.
	EventsDriver string
}

// App is the HTTP application together with the resources it owns.
type App struct {
	Fiber   *fiber.App
	Auth    *services.AuthService
	limiter *middleware.RateLimiter
}

// New builds the Fiber app with every route under /api/v1.
func New(d Deps) *App {
	cfg := d.Config
	log := d.Logger
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Gateway == nil {
		d.Gateway = payment.Unconfigured{}
	}

	// --- Services ---
	authService := services.NewAuthService(d.Store.Users, services.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	}, log.Named("auth"))
	categoryService := services.NewCategoryService(d.Store.Categories, d.Cache, cfg.CacheTTL, log.Named("category"))
	productService := services.NewProductService(d.Store.Products, d.Store.Categories, d.Cache, cfg.CacheTTL, log.Named("product"))
	orderService := services.NewOrderService(d.Store.Orders, d.Store.Products, d.Store.Users, d.Events, log.Named("order"))
	paymentService := services.NewPaymentService(d.Gateway, orderService, log.Named("payment"))

	// --- Fiber ---
	app := fiber.New(fiber.Config{
		AppName:      "Virtual Vault",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler(log.Named("http")),
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Output: logging.Writer(log.Named("http")),
		Format: "${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.CORS(cfg.IsDevelopment(), cfg.FrontendURL))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	guards := handlers.Guards{
		SignIn:    middleware.RequireSignIn(authService, log),
		Admin:     middleware.IsAdmin(authService, log),
		RateLimit: limiter.Handler(),
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, log).RegisterRoutes(apiV1, guards)
	handlers.NewOrderHandler(orderService, log).RegisterRoutes(apiV1, guards)
	handlers.NewCategoryHandler(categoryService, log).RegisterRoutes(apiV1, guards)
	handlers.NewProductHandler(productService, log).RegisterRoutes(apiV1, guards)
	handlers.NewPaymentHandler(paymentService, log).RegisterRoutes(apiV1, guards)

	app.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString("<h1>Welcome to ecommerce app</h1>")
	})

	// --- Health Check Endpoint ---
	eventsDriver := d.EventsDriver
	if eventsDriver == "" {
		eventsDriver = config.EventsNone
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		status, store := "healthy", "connected"
		code := fiber.StatusOK
		if err := d.Store.Ping(ctx); err != nil {
			log.Warn("store ping failed", zap.Error(err))
			status, store = "degraded", "unreachable"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"store":  d.Store.Driver + ": " + store,
			"events": eventsDriver,
		})
	})

	return &App{Fiber: app, Auth: authService, limiter: limiter}
}

// Shutdown stops the server and the rate limiter.
func (a *App) Shutdown(ctx context.Context) error {
	defer a.limiter.Stop()
	return a.Fiber.ShutdownWithContext(ctx)
}
