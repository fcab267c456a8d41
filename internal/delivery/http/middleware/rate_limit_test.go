package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"portfolio-backend/internal/delivery/http/middleware"
	"portfolio-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(client *goredis.Client, cfg middleware.RateLimitConfig, userID string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(string(domain.KeyUserID), userID)
		}
		c.Next()
	})
	r.Use(middleware.NewRateLimiter(client, cfg).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func hit(r *gin.Engine, method string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := limitedRouter(client, middleware.GlobalRateLimitConfig(3, time.Minute), "")

	for i := 0; i < 3; i++ {
		w := hit(r, http.MethodGet)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, strconv.Itoa(2-i), w.Header().Get("X-RateLimit-Remaining"))
	}

	w := hit(r, http.MethodGet)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	count, err := mr.Get("rl:ip:203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "4", count)
	assert.Greater(t, mr.TTL("rl:ip:203.0.113.7"), time.Duration(0))

	t.Run("Window expiry resets the counter", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		assert.Equal(t, http.StatusOK, hit(r, http.MethodGet).Code)
	})
}

func TestWriteRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := limitedRouter(client, middleware.WriteRateLimitConfig(1, time.Minute), "user1")

	assert.Equal(t, http.StatusCreated, hit(r, http.MethodPost).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, http.MethodPost).Code)

	// Reads are never limited by the write limiter
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet).Code)
	assert.True(t, mr.Exists("rl:write:user1"))
}

func TestRateLimiterRedisFailure(t *testing.T) {
	t.Run("Fails open to memory by default", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = client.Close() })
		mr.Close()

		r := limitedRouter(client, middleware.GlobalRateLimitConfig(1, time.Minute), "")
		assert.Equal(t, http.StatusOK, hit(r, http.MethodGet).Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(r, http.MethodGet).Code)
	})

	t.Run("Fails closed when configured", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = client.Close() })
		mr.Close()

		cfg := middleware.GlobalRateLimitConfig(1, time.Minute)
		cfg.FailClosed = true
		r := limitedRouter(client, cfg, "")
		assert.Equal(t, http.StatusServiceUnavailable, hit(r, http.MethodGet).Code)
	})
}

func TestRateLimiterInMemory(t *testing.T) {
	r := limitedRouter(nil, middleware.GlobalRateLimitConfig(2, time.Minute), "")

	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet).Code)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet).Code)

	w := hit(r, http.MethodGet)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}
