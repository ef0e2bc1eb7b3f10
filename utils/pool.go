package utils

import (
	"sync"
)

// SlicePool is a pool of reusable slices to reduce allocations on hot query paths.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates a pool of slices pre-allocated with the given capacity.
func NewSlicePool[T any](capacity int) *SlicePool[T] {
	p := &SlicePool[T]{}
	p.pool.New = func() any {
		s := make([]T, 0, capacity)
		return &s
	}
	return p
}

// Get retrieves an empty slice from the pool.
func (p *SlicePool[T]) Get() *[]T {
	list := p.pool.Get().(*[]T)
	*list = (*list)[:0]
	return list
}

// Put returns a slice to the pool. The elements are zeroed so the pool does not
// keep anything they reference alive.
func (p *SlicePool[T]) Put(list *[]T) {
	if list == nil {
		return
	}
	clear(*list)
	*list = (*list)[:0]
	p.pool.Put(list)
}
