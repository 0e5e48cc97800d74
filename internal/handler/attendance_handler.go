package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/service"
	"github.com/escolar-dev/escolar-api/pkg/response"
)

// AttendanceHandler exposes the attendance read side.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param lesson_id query string false "Filter by lesson"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	var filter models.AttendanceFilter
	filter.StudentID = c.Query("student_id")
	filter.LessonID = c.Query("lesson_id")
	filter.Page, filter.PageSize = pageFromQuery(c)
	if raw := c.Query("from"); raw != "" {
		var d models.Date
		if err := d.UnmarshalJSON([]byte(`"` + raw + `"`)); err == nil {
			filter.From = &d
		}
	}
	if raw := c.Query("to"); raw != "" {
		var d models.Date
		if err := d.UnmarshalJSON([]byte(`"` + raw + `"`)); err == nil {
			filter.To = &d
		}
	}

	records, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}
