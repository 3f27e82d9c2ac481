package queue

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeFirstOrdersBySizeThenInsertion(t *testing.T) {
	type item struct {
		name string
		size int
	}
	q := New(SizeFirst(func(i item) int { return i.size }))

	q.Push(item{"b", 3})
	q.Push(item{"a", 1})
	q.Push(item{"c", 1}) // ties with "a"; must pop after it (insertion order)
	q.Push(item{"d", 2})

	var order []string
	for {
		it, ok := q.Pop()
		if !ok {
			break
		}
		order = append(order, it.name)
	}
	assert.Equal(t, []string{"a", "c", "d", "b"}, order)
}

func TestPopEmptyReturnsFalse(t *testing.T) {
	q := New(SizeFirst(func(i int) int { return i }))
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestLenTracksPushPop(t *testing.T) {
	q := New(SizeFirst(func(i int) int { return i }))
	assert.Equal(t, 0, q.Len())
	q.Push(1)
	q.Push(2)
	assert.Equal(t, 2, q.Len())
	_, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, q.Len())
}

func TestRandomUniformIsReproducibleWithSeed(t *testing.T) {
	mk := func() []int {
		rng := rand.New(rand.NewSource(42))
		q := New(RandomUniform[int](rng))
		for i := 0; i < 5; i++ {
			q.Push(i)
		}
		var out []int
		for {
			v, ok := q.Pop()
			if !ok {
				break
			}
			out = append(out, v)
		}
		return out
	}
	assert.Equal(t, mk(), mk())
}
