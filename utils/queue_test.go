package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	q := NewQueue[int](2)
	_, ok := q.Pop()
	require.False(t, ok)

	q.Push(1)
	q.Push(2)
	v, _ := q.Pop()
	require.Equal(t, 1, v)

	// Wrap around the ring and then grow it.
	for i := 3; i <= 6; i++ {
		q.Push(i)
	}
	require.Equal(t, 5, q.Len())

	for want := 2; want <= 6; want++ {
		v, ok = q.Pop()
		require.True(t, ok)
		require.Equal(t, want, v)
	}
	require.Equal(t, 0, q.Len())
}

func TestSlicePool(t *testing.T) {
	p := NewSlicePool[*int](4)

	list := p.Get()
	require.Empty(t, *list)
	n := 1
	*list = append(*list, &n)
	p.Put(list)
	p.Put(nil)

	list = p.Get()
	require.Empty(t, *list)
}
