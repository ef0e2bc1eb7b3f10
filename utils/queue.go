package utils

// Queue is a FIFO queue backed by a ring buffer that grows when full.
type Queue[T any] struct {
	items []T
	head  int
	tail  int
	size  int
}

// NewQueue creates a queue with room for size items before it has to grow.
func NewQueue[T any](size int) *Queue[T] {
	if size < 1 {
		size = 1
	}
	return &Queue[T]{items: make([]T, size)}
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	return q.size
}

// Push appends an item to the back of the queue.
func (q *Queue[T]) Push(item T) {
	if q.size == len(q.items) {
		q.grow()
	}
	q.items[q.tail] = item
	q.tail = (q.tail + 1) % len(q.items)
	q.size++
}

// Pop removes and returns the oldest element. The boolean ok is false if the
// queue is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	if q.size == 0 {
		return item, false
	}
	item = q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.size--
	return item, true
}

func (q *Queue[T]) grow() {
	items := make([]T, len(q.items)*2)
	for index := range q.size {
		items[index] = q.items[(q.head+index)%len(q.items)]
	}
	q.items = items
	q.head = 0
	q.tail = q.size
}
