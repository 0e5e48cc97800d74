package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/escolar-dev/escolar-api/internal/models"
)

func pageFromQuery(c *gin.Context) (int, int) {
	page := 1
	if parsed, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = parsed
	}
	size := 20
	if parsed, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = parsed
	}
	return page, size
}

func entityFilterFromQuery(c *gin.Context) models.EntityFilter {
	var filter models.EntityFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageFromQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}

func personFilterFromQuery(c *gin.Context) models.PersonFilter {
	var filter models.PersonFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageFromQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}
