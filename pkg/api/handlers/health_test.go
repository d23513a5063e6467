package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	call := func(p Pinger) *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, Health(p)(e.NewContext(req, rec)))
		return rec
	}

	t.Run("database_reachable", func(t *testing.T) {
		rec := call(stubPinger{})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","database":"connected"}`, rec.Body.String())
	})

	t.Run("database_unreachable", func(t *testing.T) {
		rec := call(stubPinger{err: errors.New("connection refused")})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"status":"error","database":"disconnected"}`, rec.Body.String())
	})
}
