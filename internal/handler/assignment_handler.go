package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/service"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
	"github.com/escolar-dev/escolar-api/pkg/response"
)

// AssignmentHandler handles assignment endpoints.
type AssignmentHandler struct {
	service *service.AssignmentService
	runner  *FormRunner
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(svc *service.AssignmentService, runner *FormRunner) *AssignmentHandler {
	return &AssignmentHandler{service: svc, runner: runner}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param lesson_id query string false "Filter by lesson"
// @Param search query string false "Search keyword"
// @Param due_after query string false "Due on or after (YYYY-MM-DD)"
// @Param due_before query string false "Due on or before (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	var filter models.AssignmentFilter
	filter.LessonID = c.Query("lesson_id")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageFromQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	if raw := c.Query("due_after"); raw != "" {
		var d models.Date
		if err := d.UnmarshalJSON([]byte(`"` + raw + `"`)); err == nil {
			filter.DueAfter = &d
		}
	}
	if raw := c.Query("due_before"); raw != "" {
		var d models.Date
		if err := d.UnmarshalJSON([]byte(`"` + raw + `"`)); err == nil {
			filter.DueBefore = &d
		}
	}

	assignments, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Get godoc
// @Summary Get assignment by id
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.AssignmentDraft true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var draft service.AssignmentDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	value, ok := h.runner.Submit(c, "assignment", draft, func(ctx context.Context) (interface{}, error) {
		return h.service.Create(ctx, draft)
	})
	if !ok {
		return
	}
	response.Created(c, value)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.AssignmentDraft true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var draft service.AssignmentDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	id := c.Param("id")
	value, ok := h.runner.Submit(c, "assignment", draft, func(ctx context.Context) (interface{}, error) {
		return h.service.Update(ctx, id, draft)
	})
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, value, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
