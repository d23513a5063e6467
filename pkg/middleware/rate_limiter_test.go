package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows_burst_then_throttles", func(t *testing.T) {
		rl := NewRateLimiter(1, 2)
		e := echo.New()
		handler := rl.Middleware()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			require.NoError(t, handler(c))
			codes = append(codes, rec.Code)
		}

		assert.Equal(t, http.StatusOK, codes[0])
		assert.Equal(t, http.StatusOK, codes[1])
		assert.Equal(t, http.StatusTooManyRequests, codes[2])
	})

	t.Run("limits_are_per_ip", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		e := echo.New()
		handler := rl.Middleware()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		for _, addr := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
			req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			require.NoError(t, handler(c))
			assert.Equal(t, http.StatusOK, rec.Code, addr)
		}
	})
}
