package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func doRequest(r *gin.Engine) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestSimpleRateLimitBlocksOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", SimpleRateLimit(3, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		if code := doRequest(r); code != http.StatusOK {
			t.Fatalf("request %d: status = %d; want 200", i, code)
		}
	}
	if code := doRequest(r); code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d; want 429", code)
	}
}

func TestRedisRateLimitFailsOpenWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RedisRateLimit(1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// No redis configured: every request passes.
	for i := 0; i < 5; i++ {
		if code := doRequest(r); code != http.StatusOK {
			t.Fatalf("request %d: status = %d; want 200 (fail-open)", i, code)
		}
	}
}
