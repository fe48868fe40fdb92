package utils

import (
	"fmt"
	"math"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize fills defaults and clamps the page size.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Total     int64  `json:"total"`
	PageCount int    `json:"page_count"`
	Showing   string `json:"showing"`
}

// NewPageMeta computes page count and the "21-40 of 150 results" label.
func NewPageMeta(p Pagination, total int64) PageMeta {
	pageCount := 0
	if p.PageSize > 0 {
		pageCount = int(math.Ceil(float64(total) / float64(p.PageSize)))
	}

	showing := "0 results"
	if total > 0 {
		start := int64(p.Offset()) + 1
		end := int64(p.Offset() + p.PageSize)
		if end > total {
			end = total
		}
		if start > total {
			showing = fmt.Sprintf("0 of %d results", total)
		} else {
			showing = fmt.Sprintf("%d-%d of %d results", start, end, total)
		}
	}

	return PageMeta{
		Page:      p.Page,
		PageSize:  p.PageSize,
		Total:     total,
		PageCount: pageCount,
		Showing:   showing,
	}
}
