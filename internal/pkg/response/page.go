package response

import "github.com/nekogravitycat/class-booking-backend/internal/pkg/request"

// PageResponse is the standard wrapper for list endpoints.
type PageResponse[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasMore  bool `json:"has_more"`
}

// NewPageResponse wraps one page of a list. Items is never null in JSON.
func NewPageResponse[T any](items []T, p request.ListParams, total int) PageResponse[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return PageResponse[T]{
		Items:    items,
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    total,
		HasMore:  p.Offset()+len(items) < total,
	}
}

// MapPage converts domain items with fn before wrapping them.
func MapPage[S, T any](items []S, fn func(S) T, p request.ListParams, total int) PageResponse[T] {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = fn(it)
	}
	return NewPageResponse(out, p, total)
}
