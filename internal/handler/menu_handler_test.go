package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/middleware"
	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/service"
	"github.com/escolar-dev/escolar-api/pkg/response"
)

func menuEnvelope(t *testing.T, w *httptest.ResponseRecorder) ([]interface{}, map[string]interface{}) {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	items, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	return items, envelope.Meta
}

func TestMenuHandlerNavigationForAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMenuHandler(service.NewMenuService(nil, zap.NewNop()))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/navigation", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleAdmin})

	handler.Navigation(c)
	require.Equal(t, http.StatusOK, w.Code)

	items, meta := menuEnvelope(t, w)
	assert.Len(t, items, len(models.Navigation))
	assert.Equal(t, "ADMIN", meta["role"])
}

func TestMenuHandlerNavigationForStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMenuHandler(service.NewMenuService(nil, zap.NewNop()))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/navigation", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleStudent})

	handler.Navigation(c)
	require.Equal(t, http.StatusOK, w.Code)

	items, meta := menuEnvelope(t, w)
	assert.Equal(t, "STUDENT", meta["role"])
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		require.True(t, ok)
		assert.NotEqual(t, "/list/subjects", item["target"])
		assert.NotEqual(t, "/list/teachers", item["target"])
	}
}

func TestMenuHandlerNavigationWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMenuHandler(service.NewMenuService(nil, zap.NewNop()))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/navigation", nil)
	c.Request = req

	handler.Navigation(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
	assert.Equal(t, "", envelope.Meta["role"])
}

func TestMenuHandlerNavigationUnknownRoleClaim(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMenuHandler(service.NewMenuService(nil, zap.NewNop()))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/navigation", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-3", Role: models.UserRole("PRINCIPAL")})

	handler.Navigation(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
}
