// Package pagination normalizes page/page_size query parameters.
package pagination

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// New clamps the requested page to valid bounds.
func New(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Limit() int { return p.Size }

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Result is one page of items plus the total count.
type Result[T any] struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  []T `json:"results"`
}

// NewResult wraps items for p. A nil slice renders as an empty list.
func NewResult[T any](p Page, count int, items []T) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Count: count, Page: p.Number, PageSize: p.Size, Results: items}
}
