package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escolar-dev/escolar-api/internal/service"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
	"github.com/escolar-dev/escolar-api/pkg/response"
)

// ClassHandler handles class endpoints.
type ClassHandler struct {
	service *service.ClassService
	runner  *FormRunner
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc *service.ClassService, runner *FormRunner) *ClassHandler {
	return &ClassHandler{service: svc, runner: runner}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, pagination, err := h.service.List(c.Request.Context(), entityFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Options godoc
// @Summary List class options for selection fields
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/options [get]
func (h *ClassHandler) Options(c *gin.Context) {
	options, err := h.service.Options(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Get godoc
// @Summary Get class by id
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.ClassDraft true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var draft service.ClassDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	value, ok := h.runner.Submit(c, "class", draft, func(ctx context.Context) (interface{}, error) {
		return h.service.Create(ctx, draft)
	})
	if !ok {
		return
	}
	response.Created(c, value)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.ClassDraft true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var draft service.ClassDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	id := c.Param("id")
	value, ok := h.runner.Submit(c, "class", draft, func(ctx context.Context) (interface{}, error) {
		return h.service.Update(ctx, id, draft)
	})
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, value, nil)
}

// Delete godoc
// @Summary Delete class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
