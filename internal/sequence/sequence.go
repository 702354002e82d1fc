// Package sequence provides endless iterators over a fixed list, used by
// scripts to step through notes and patterns.
package sequence

import "github.com/nfrund/livetone/internal/random"

// Iterator yields the next element on every call. It never ends; an empty
// list yields the zero value.
type Iterator[T any] struct {
	next func() T
}

// Next returns the next element.
func (it *Iterator[T]) Next() T {
	return it.next()
}

// Take returns the next n elements.
func (it *Iterator[T]) Take(n int) []T {
	out := make([]T, 0, max(n, 0))
	for range n {
		out = append(out, it.next())
	}
	return out
}

func at[T any](items []T, i int) T {
	var zero T
	if i < 0 || i >= len(items) {
		return zero
	}
	return items[i]
}

// FromFirst cycles through items from the first element.
func FromFirst[T any](items []T) *Iterator[T] {
	i := 0
	return &Iterator[T]{next: func() T {
		if i == len(items) {
			i = 0
		}
		v := at(items, i)
		i++
		return v
	}}
}

// FromLast cycles through items backwards from the last element.
func FromLast[T any](items []T) *Iterator[T] {
	i := len(items)
	return &Iterator[T]{next: func() T {
		if i == 0 {
			i = len(items)
		}
		i--
		return at(items, i)
	}}
}

// RoundTrip walks to one end and back again. Direction flips on reaching
// the first or the last element.
func RoundTrip[T any](items []T, fromFirst bool) *Iterator[T] {
	i, dir := 0, 1
	if !fromFirst {
		i, dir = len(items)-1, -1
	}
	return &Iterator[T]{next: func() T {
		if len(items) == 1 {
			return items[0]
		}
		v := at(items, i)
		i += dir
		if i == 0 {
			dir = 1
		} else if i == len(items)-1 {
			dir = -1
		}
		return v
	}}
}

// Shuffle yields every element once in random order, reshuffling after each
// full pass.
func Shuffle[T any](r *random.Rand, items []T) *Iterator[T] {
	var shuffled []T
	i := 0
	return &Iterator[T]{next: func() T {
		if shuffled == nil || i == len(items) {
			shuffled = random.Shuffled(r, items)
			i = 0
		}
		v := at(shuffled, i)
		i++
		return v
	}}
}

// Random picks an element at random on every step.
func Random[T any](r *random.Rand, items []T) *Iterator[T] {
	return &Iterator[T]{next: func() T {
		return at(items, r.Number(len(items)))
	}}
}
