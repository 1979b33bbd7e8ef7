// AngelaMos | 2026
// pagination.go

package core

import (
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPageNumber keeps Offset from overflowing at the largest page size.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// Page is a 1-indexed page request with a bounded size.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size, defaultSize int) Page {
	if defaultSize < 1 {
		defaultSize = DefaultPageSize
	}
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size < 1 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func NewPagination(p Page, total int) Pagination {
	totalPages := 0
	if p.Size > 0 {
		totalPages = (total + p.Size - 1) / p.Size
	}

	return Pagination{
		Page:       p.Number,
		Limit:      p.Size,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Number < totalPages,
		HasPrev:    p.Number > 1,
	}
}

// PageFromQuery reads page/limit query parameters.
func PageFromQuery(r *http.Request, defaultSize int) Page {
	return NewPage(
		QueryInt(r, "page", 1),
		QueryInt(r, "limit", defaultSize),
		defaultSize,
	)
}

func QueryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func QueryBool(r *http.Request, key string) bool {
	parsed, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && parsed
}
