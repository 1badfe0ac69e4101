// Package pagination slices an in-memory sequence into fixed-size pages.
package pagination

// DefaultPageSize is the leaderboard page size.
const DefaultPageSize = 10

// View is a page cursor over a fully fetched sequence. The zero value is an
// empty view with DefaultPageSize.
type View[T any] struct {
	items []T
	index int
	size  int
}

// New returns a view over items positioned at the first page.
func New[T any](items []T, size int) *View[T] {
	v := &View[T]{}
	v.Reset(items, size)
	return v
}

// Reset replaces the items and moves to the first page.
func (v *View[T]) Reset(items []T, size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	v.items = items
	v.index = 0
	v.size = size
}

// Size returns the page size.
func (v *View[T]) Size() int {
	if v.size <= 0 {
		return DefaultPageSize
	}
	return v.size
}

// Index returns the zero-based page index.
func (v *View[T]) Index() int { return v.index }

// Total returns the number of items across all pages.
func (v *View[T]) Total() int { return len(v.items) }

// Offset is the absolute position of the first item on the current page.
func (v *View[T]) Offset() int { return v.index * v.Size() }

// Items returns every item, unsliced.
func (v *View[T]) Items() []T { return v.items }

// Page returns the current page. Bounds are clamped, so the result may be
// empty but never panics.
func (v *View[T]) Page() []T {
	start := min(v.Offset(), len(v.items))
	end := min(start+v.Size(), len(v.items))
	return v.items[start:end]
}

// HasNext reports whether another page follows.
func (v *View[T]) HasNext() bool { return (v.index+1)*v.Size() < len(v.items) }

// HasPrev reports whether a page precedes this one.
func (v *View[T]) HasPrev() bool { return v.index > 0 }

// Next advances one page. It returns false and does nothing on the last page.
func (v *View[T]) Next() bool {
	if !v.HasNext() {
		return false
	}
	v.index++
	return true
}

// Prev goes back one page. It returns false and does nothing on the first page.
func (v *View[T]) Prev() bool {
	if !v.HasPrev() {
		return false
	}
	v.index--
	return true
}
