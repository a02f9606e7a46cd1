package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portal/backend/internal/interfaces/http/dto"
	"github.com/portal/backend/internal/interfaces/http/router"
)

func TestSystemHandler(t *testing.T) {
	engine := router.New(zap.NewNop(), true, nil, NewSystemHandler(nil, zap.NewNop()))

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ready without a database", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/ready", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("request id header is set", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil)
		engine.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestInvalidIDsReturnBadRequest(t *testing.T) {
	engine := router.New(zap.NewNop(), true, nil,
		NewCheckoutHandler(nil, nil, zap.NewNop()),
		NewOrderHandler(nil, zap.NewNop()))

	paths := []string{
		"/api/v1/checkout/sessions/not-a-uuid",
		"/api/v1/checkout/sessions?user_id=not-a-uuid",
		"/api/v1/orders/not-a-uuid",
		"/api/v1/orders/not-a-uuid/related",
		"/api/v1/orders?user_id=not-a-uuid",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code, path)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	}
}
