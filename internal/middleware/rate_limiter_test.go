package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterBlocksAfterMax(t *testing.T) {
	app := fiber.New()
	app.Get("/limited", NewRateLimiter(RateLimiterConfig{
		Max:        2,
		Expiration: time.Minute,
	}), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiterCustomKeyFunc(t *testing.T) {
	app := fiber.New()
	app.Get("/limited", NewRateLimiter(RateLimiterConfig{
		Max:        1,
		Expiration: time.Minute,
		KeyFunc: func(c *fiber.Ctx) string {
			return c.Get("X-Client")
		},
	}), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	reqA := httptest.NewRequest("GET", "/limited", nil)
	reqA.Header.Set("X-Client", "a")
	resp, err := app.Test(reqA)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A different key gets its own budget.
	reqB := httptest.NewRequest("GET", "/limited", nil)
	reqB.Header.Set("X-Client", "b")
	resp, err = app.Test(reqB)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(reqA)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
