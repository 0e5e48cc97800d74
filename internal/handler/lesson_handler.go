package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escolar-dev/escolar-api/internal/service"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
	"github.com/escolar-dev/escolar-api/pkg/response"
)

// LessonHandler handles lesson endpoints.
type LessonHandler struct {
	service *service.LessonService
	runner  *FormRunner
}

// NewLessonHandler constructs a lesson handler.
func NewLessonHandler(svc *service.LessonService, runner *FormRunner) *LessonHandler {
	return &LessonHandler{service: svc, runner: runner}
}

// List godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	lessons, pagination, err := h.service.List(c.Request.Context(), entityFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, pagination)
}

// Options godoc
// @Summary List lesson options for selection fields
// @Tags Lessons
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lessons/options [get]
func (h *LessonHandler) Options(c *gin.Context) {
	options, err := h.service.Options(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Get godoc
// @Summary Get lesson by id
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	lesson, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Create godoc
// @Summary Create lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body service.LessonDraft true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var draft service.LessonDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	value, ok := h.runner.Submit(c, "lesson", draft, func(ctx context.Context) (interface{}, error) {
		return h.service.Create(ctx, draft)
	})
	if !ok {
		return
	}
	response.Created(c, value)
}

// Update godoc
// @Summary Update lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body service.LessonDraft true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [put]
func (h *LessonHandler) Update(c *gin.Context) {
	var draft service.LessonDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	id := c.Param("id")
	value, ok := h.runner.Submit(c, "lesson", draft, func(ctx context.Context) (interface{}, error) {
		return h.service.Update(ctx, id, draft)
	})
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, value, nil)
}

// Delete godoc
// @Summary Delete lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
