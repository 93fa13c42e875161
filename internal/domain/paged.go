package domain

// PagedResult is one page of items plus the metadata needed to render
// pagination controls. Derived values are computed from TotalCount,
// PageSize and PageNumber and never stored.
type PagedResult[T any] struct {
	Items      []T
	PageNumber int
	PageSize   int
	TotalCount int
}

// NewPagedResult wraps a page of items. A nil slice is normalised to empty.
func NewPagedResult[T any](items []T, totalCount, pageNumber, pageSize int) PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return PagedResult[T]{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}

// EmptyPage returns a page with no items and a zero total.
func EmptyPage[T any](pageNumber, pageSize int) PagedResult[T] {
	return NewPagedResult[T](nil, 0, pageNumber, pageSize)
}

// TotalPages is ceil(TotalCount / PageSize).
func (p PagedResult[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

func (p PagedResult[T]) HasPreviousPage() bool {
	return p.PageNumber > 1
}

func (p PagedResult[T]) HasNextPage() bool {
	return p.PageNumber < p.TotalPages()
}

// MapPage converts the items of a page while keeping its metadata.
func MapPage[T, U any](page PagedResult[T], fn func(T) U) PagedResult[U] {
	items := make([]U, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, fn(item))
	}
	return NewPagedResult(items, page.TotalCount, page.PageNumber, page.PageSize)
}
