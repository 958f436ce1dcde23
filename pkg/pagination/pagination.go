package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse extracts and validates page/limit from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// ListFilter carries the shared list-screen filters: a status filter and a
// free-text search term.
type ListFilter struct {
	Status string
	Search string
	Params
}

// ParseListFilter extracts pagination plus the status/q filters the
// maintenance screens send.
func ParseListFilter(c *gin.Context) ListFilter {
	return ListFilter{
		Status: c.Query("status"),
		Search: c.Query("q"),
		Params: Parse(c),
	}
}
