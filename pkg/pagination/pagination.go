// Package pagination provides types and utilities for paginated data queries.
package pagination

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/query"
)

// ErrInvalidLimit is returned by ParsePageRequest when limit is outside (0, max].
var ErrInvalidLimit = errcode.New("INVALID_LIMIT", "limit must be between 1 and the maximum page size")

// SortFields wraps []query.SortField with flexible JSON unmarshaling.
// Accepts either a string ("title,-created_at") or an array of SortField objects.
type SortFields []query.SortField

// UnmarshalJSON supports unmarshaling from a comma-separated string or array format.
func (s *SortFields) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = query.ParseSortFields(str)
		return nil
	}

	var fields []query.SortField
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = fields
	return nil
}

// PageRequest represents a client request for a page of data with optional search and sorting.
type PageRequest struct {
	Page   int        `json:"page"`
	Limit  int        `json:"limit"`
	Search *string    `json:"search,omitempty"`
	Sort   SortFields `json:"sort,omitempty"`
}

// Normalize clamps the request into valid pagination values based on the config.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = cfg.DefaultPageSize
	}
	if r.Limit > cfg.MaxPageSize {
		r.Limit = cfg.MaxPageSize
	}
}

// Offset calculates the number of records to skip based on page and limit.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// ParsePageRequest reads page and limit from URL query values. A supplied limit
// outside (0, cfg.MaxPageSize] fails with ErrInvalidLimit instead of being clamped.
// A missing or non-positive page becomes 1.
func ParsePageRequest(values url.Values, cfg Config) (PageRequest, error) {
	req := PageRequest{Page: 1, Limit: cfg.DefaultPageSize}

	if v := values.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			req.Page = page
		}
	}

	if v := values.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > cfg.MaxPageSize {
			return req, fmt.Errorf("%w: %q", ErrInvalidLimit, v)
		}
		req.Limit = limit
	}

	return req, nil
}

// PageResult holds a page of data along with pagination metadata.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult creates a PageResult with calculated total pages.
func NewPageResult[T any](items []T, total, page, limit int) PageResult[T] {
	totalPages := 1
	if limit > 0 {
		totalPages = total / limit
		if total%limit != 0 {
			totalPages++
		}
	}
	if totalPages < 1 {
		totalPages = 1
	}

	if items == nil {
		items = []T{}
	}

	return PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
