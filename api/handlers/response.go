package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data interface{}, statusCode int, errors []string) {

	if statusCode == http.StatusNoContent {
		c.Status(statusCode)
		return

	}

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}

// PageDetails describes where a page sits in the full result list.
type PageDetails struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalPages   int  `json:"total_pages"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
	TotalResults int  `json:"total_results"`
}

// page is a 1-based page number and a page size.
type page struct {
	number int
	size   int
}

func (p page) valid() bool {
	return p.number >= 1 && p.size >= 1
}

func (p page) details(total int) PageDetails {
	totalPages := max((total+p.size-1)/p.size, 1)

	return PageDetails{
		CurrentPage:  p.number,
		PageSize:     p.size,
		TotalPages:   totalPages,
		HasNextPage:  p.number < totalPages,
		HasPrevPage:  p.number > 1,
		TotalResults: total,
	}
}

// pageOf returns the items on p, empty past the end. It never returns nil.
func pageOf[T any](items []T, p page) []T {
	if !p.valid() {
		return []T{}
	}
	start := (p.number - 1) * p.size
	if start < 0 || start >= len(items) {
		return []T{}
	}
	return items[start:min(start+p.size, len(items))]
}
