package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escolar-dev/escolar-api/internal/service"
	"github.com/escolar-dev/escolar-api/pkg/response"
)

// MenuHandler resolves the navigation items for the caller's role.
type MenuHandler struct {
	service *service.MenuService
}

// NewMenuHandler constructs a menu handler.
func NewMenuHandler(svc *service.MenuService) *MenuHandler {
	return &MenuHandler{service: svc}
}

// Navigation godoc
// @Summary List navigation items visible to the caller
// @Tags Navigation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /navigation [get]
func (h *MenuHandler) Navigation(c *gin.Context) {
	role := roleFromContext(c)
	items := h.service.VisibleItems(role)
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{
		"role": string(role),
	})
}
