package paging

// Page is one window of a listing plus its boundary flags.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// New describes items as page number page (0-indexed) of a listing holding
// total elements. size must be >= 1. Last is also true when items is empty,
// which covers pages requested past the end.
func New[T any](items []T, page, size int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return Page[T]{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1 || len(items) == 0,
	}
}

// Map converts the items of p, keeping the descriptor.
func Map[T, U any](p Page[T], f func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, f(it))
	}
	return Page[U]{
		Items:         out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
	}
}
