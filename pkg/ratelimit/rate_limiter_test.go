package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"triptrek/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg *Config) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client, cfg)
}

func testConfig() *Config {
	return &Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 5,
		BookingRequests: 3,
		PaymentRequests: 2,
		TicketRequests:  2,
		HealthRequests:  10,
		WhitelistedIPs:  []string{"10.0.0.0/8", "192.168.1.7"},
	}
}

func TestIsAllowedSlidingWindow(t *testing.T) {
	limiter := newTestLimiter(t, testConfig())
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	// Same instant, every request still counts
	for i := 0; i < 2; i++ {
		result, err := limiter.IsAllowed(ctx, "203.0.113.1", RateLimitTypePayment)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 1-i, result.Remaining)
	}

	result, err := limiter.IsAllowed(ctx, "203.0.113.1", RateLimitTypePayment)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 2, result.Limit)

	// Limits are per type and per client
	result, err = limiter.IsAllowed(ctx, "203.0.113.1", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	result, err = limiter.IsAllowed(ctx, "203.0.113.2", RateLimitTypePayment)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	// Window slides
	now = now.Add(61 * time.Second)
	result, err = limiter.IsAllowed(ctx, "203.0.113.1", RateLimitTypePayment)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestIsAllowedBypasses(t *testing.T) {
	cfg := testConfig()
	cfg.PaymentRequests = 1
	limiter := newTestLimiter(t, cfg)
	ctx := context.Background()

	for _, ip := range []string{"10.1.2.3", "192.168.1.7"} {
		for i := 0; i < 3; i++ {
			result, err := limiter.IsAllowed(ctx, ip, RateLimitTypePayment)
			require.NoError(t, err)
			assert.True(t, result.Allowed, ip)
		}
	}

	cfg.Enabled = false
	for i := 0; i < 3; i++ {
		result, err := limiter.IsAllowed(ctx, "203.0.113.1", RateLimitTypePayment)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestGetRateLimitType(t *testing.T) {
	tests := map[string]RateLimitType{
		"/health":                       RateLimitTypeHealth,
		"/metrics":                      RateLimitTypeHealth,
		"/api/v1/bookings/:id/payment":  RateLimitTypePayment,
		"/api/v1/payments/verify":       RateLimitTypePayment,
		"/api/v1/bookings/:id/ticket":   RateLimitTypeTicket,
		"/api/v1/bookings/:id":          RateLimitTypeBooking,
		"/api/v1/packages/:id/bookings": RateLimitTypeBooking,
		"/swagger/*any":                 RateLimitTypeDefault,
	}

	for path, want := range tests {
		assert.Equal(t, want, getRateLimitType(path), path)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.TicketRequests = 1
	limiter := newTestLimiter(t, cfg)

	router := gin.New()
	router.Use(Middleware(limiter, logger.Discard()))
	router.GET("/api/v1/bookings/:id/ticket", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/1/ticket", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
		router.ServeHTTP(w, req)
		return w
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := do()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
