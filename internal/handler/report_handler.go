package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escolar-dev/escolar-api/internal/service"
	"github.com/escolar-dev/escolar-api/pkg/response"
)

// ReportHandler serves report-card exports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// ReportCard godoc
// @Summary Export a student's report card
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/students/{id} [get]
func (h *ReportHandler) ReportCard(c *gin.Context) {
	studentID := c.Param("id")
	format := c.DefaultQuery("format", service.ReportFormatCSV)

	payload, contentType, err := h.service.ReportCard(c.Request.Context(), studentID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("report-card-%s.%s", studentID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
