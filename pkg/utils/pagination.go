package utils

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// NewPaginationParams clamps page and limit to sane values: page starts at 1,
// the limit defaults to DefaultPageSize and never exceeds MaxPageSize.
func NewPaginationParams(page, limit int) PaginationParams {
	if page <= 0 {
		page = 1
	}

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: limit,
		Offset:   (page - 1) * limit,
	}
}

// TotalPages rounds up; a zero or negative limit yields zero pages.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}

// SortField is one "field:direction" term of a sortBy expression.
type SortField struct {
	Field string
	Desc  bool
}

// ParseSortBy parses "name:desc,createdAt:asc". A term without a direction
// sorts ascending. Empty input yields no fields.
func ParseSortBy(sortBy string) ([]SortField, error) {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		return nil, nil
	}

	var fields []SortField
	for _, term := range strings.Split(sortBy, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		name, dir, _ := strings.Cut(term, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("sort term %q has no field", term)
		}

		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
			fields = append(fields, SortField{Field: name})
		case "desc":
			fields = append(fields, SortField{Field: name, Desc: true})
		default:
			return nil, fmt.Errorf("sort term %q has unknown direction %q", term, dir)
		}
	}

	return fields, nil
}
