package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"virtualvault/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	// fasthttp refreshes its Date header from a process-wide goroutine.
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/valyala/fasthttp.updateServerDate.func1"))
}

type stubTokens map[string]string

func (s stubTokens) ValidateToken(token string) (string, error) {
	id, ok := s[token]
	if !ok {
		return "", errors.New("invalid token")
	}
	return id, nil
}

type stubUsers map[string]*models.User

func (s stubUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func newProtectedApp() *fiber.App {
	logger := zap.NewNop()
	tokens := stubTokens{"user-token": "u1", "admin-token": "a1", "ghost-token": "ghost"}
	users := stubUsers{
		"u1": {ID: "u1", Role: models.RoleUser},
		"a1": {ID: "a1", Role: models.RoleAdmin},
	}

	app := fiber.New()
	app.Get("/me", RequireSignIn(tokens, logger), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	app.Get("/admin", RequireSignIn(tokens, logger), IsAdmin(users, logger), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func do(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRequireSignIn(t *testing.T) {
	app := newProtectedApp()

	t.Run("raw token", func(t *testing.T) {
		status, body := do(t, app, "/me", "user-token")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "u1", body)
	})

	t.Run("bearer token", func(t *testing.T) {
		status, body := do(t, app, "/me", "Bearer user-token")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "u1", body)
	})

	t.Run("missing token", func(t *testing.T) {
		status, body := do(t, app, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.JSONEq(t, `{"success":false,"message":"Invalid or expired token"}`, body)
	})

	t.Run("invalid token", func(t *testing.T) {
		status, _ := do(t, app, "/me", "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestIsAdmin(t *testing.T) {
	app := newProtectedApp()

	status, body := do(t, app, "/admin", "admin-token")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, body = do(t, app, "/admin", "user-token")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"success":false,"message":"UnAuthorized Access"}`, body)

	status, body = do(t, app, "/admin", "ghost-token")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"success":false,"message":"Error in admin middleware"}`, body)
}

func TestAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"https://shop.example.com", true},
		{"https://shop.example.com/", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:5173", true},
		{"https://evil.example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AllowedOrigin(tt.origin, "https://shop.example.com"), tt.origin)
	}
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(false, "https://shop.example.com/"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "js.braintreegateway.com")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)
	defer rl.Stop()

	app := fiber.New()
	app.Use(rl.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_ForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	rl.forgetIdle(time.Now().Add(2 * time.Minute))
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, 1, 0)
	rl.Stop()
	rl.Stop()
}
