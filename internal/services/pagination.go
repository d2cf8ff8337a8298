package services

import (
	"math"
	"strconv"
	"strings"

	"shirtcatalog/internal/models"
)

// PageRequest selects the window [Offset, Offset+Limit). A zero Limit means the
// whole catalog.
type PageRequest struct {
	Offset int
	Limit  int
}

// Paginated reports whether a window was requested.
func (p PageRequest) Paginated() bool {
	return p.Limit > 0
}

// NewPageRequest parses offset and limit query values. Unless both are integers
// with offset >= 0 and limit > 0, the result requests the whole catalog.
func NewPageRequest(offset, limit string) PageRequest {
	o, okOffset := parseInt(offset)
	l, okLimit := parseInt(limit)
	if !okOffset || !okLimit || o < 0 || l <= 0 {
		return PageRequest{}
	}
	return PageRequest{Offset: o, Limit: l}
}

// PageRequestFromPage parses 1-based page and per_page query values.
func PageRequestFromPage(page, perPage string) PageRequest {
	p, okPage := parseInt(page)
	n, okPerPage := parseInt(perPage)
	if !okPage || !okPerPage || p < 1 || n <= 0 || p-1 > math.MaxInt/n {
		return PageRequest{}
	}
	return PageRequest{Offset: (p - 1) * n, Limit: n}
}

func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// PageResult is the listing response body.
type PageResult struct {
	Total      int64          `json:"total"`
	Paginated  bool           `json:"paginated"`
	Page       *int           `json:"page,omitempty"`
	PerPage    *int           `json:"per_page,omitempty"`
	TotalPages *int           `json:"total_pages,omitempty"`
	Data       []models.Shirt `json:"data"`
}

func newPageResult(req PageRequest, shirts []models.Shirt, total int64) *PageResult {
	if shirts == nil {
		shirts = []models.Shirt{}
	}
	result := &PageResult{Total: total, Data: shirts}
	if !req.Paginated() {
		result.Total = int64(len(shirts))
		return result
	}

	page := req.Offset/req.Limit + 1
	perPage := req.Limit
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	result.Paginated = true
	result.Page = &page
	result.PerPage = &perPage
	result.TotalPages = &totalPages
	return result
}
