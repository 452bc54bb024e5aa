package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination is the envelope every list endpoint returns next to "data".
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// parsePagination reads ?page and ?limit with sane defaults.
func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func buildPagination(total int64, page, limit int) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}
