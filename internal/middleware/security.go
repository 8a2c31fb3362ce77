package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
)

// contentSecurityPolicy allows the Braintree drop-in and PayPal scripts.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' https://js.braintreegateway.com https://assets.braintreegateway.com https://www.paypalobjects.com",
	"connect-src 'self' https://api.sandbox.braintreegateway.com https://api.braintreegateway.com https://client-analytics.braintreegateway.com https://*.braintree-api.com https://www.paypal.com",
	"frame-src 'self' https://assets.braintreegateway.com https://*.paypal.com",
	"img-src 'self' data: https://assets.braintreegateway.com https://checkout.paypal.com",
	"style-src 'self' 'unsafe-inline'",
}, "; ")

// SecurityHeaders sets the helmet headers used by every response.
func SecurityHeaders() fiber.Handler {
	return helmet.New(helmet.Config{
		ContentSecurityPolicy:     contentSecurityPolicy,
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		HSTSPreloadEnabled:        true,
		ContentTypeNosniff:        "nosniff",
		CrossOriginResourcePolicy: "cross-origin",
		CrossOriginEmbedderPolicy: "unsafe-none",
	})
}

// CORS is open in development. Otherwise only frontendURL and local origins
// are allowed.
func CORS(development bool, frontendURL string) fiber.Handler {
	if development {
		return cors.New()
	}
	frontendURL = strings.ToLower(strings.TrimRight(frontendURL, "/"))
	return cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return AllowedOrigin(origin, frontendURL)
		},
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	})
}

// AllowedOrigin reports whether a browser origin may call the API.
func AllowedOrigin(origin, frontendURL string) bool {
	if origin == "" {
		return false
	}
	if frontendURL != "" && strings.EqualFold(strings.TrimRight(origin, "/"), frontendURL) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1":
		return true
	}
	return false
}
