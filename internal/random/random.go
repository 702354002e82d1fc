// Package random holds the randomness helpers scripts use to pick notes.
package random

import (
	"math"
	"math/rand/v2"
	"slices"
)

// Source yields uniformly distributed floats in [0, 1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Rand draws numbers from a Source. Tests inject a fixed sequence.
type Rand struct {
	src Source
}

// New wraps src.
func New(src Source) *Rand {
	return &Rand{src: src}
}

// Default draws from the process-wide generator.
func Default() *Rand {
	return New(globalSource{})
}

// Number returns an integer in [0, n).
func (r *Rand) Number(n int) int {
	return int(math.Floor(r.src.Float64() * float64(n)))
}

// InRange returns an integer in [begin, end).
func (r *Rand) InRange(begin, end int) int {
	return begin + r.Number(end-begin)
}

// OneIn reports true with probability 1/n.
func (r *Rand) OneIn(n int) bool {
	return r.Number(n) == 0
}

// Shuffled returns a shuffled copy of items by repeatedly drawing one of the
// remaining elements.
func Shuffled[T any](r *Rand, items []T) []T {
	source := slices.Clone(items)
	out := make([]T, 0, len(items))
	for len(source) > 1 {
		i := r.Number(len(source))
		out = append(out, source[i])
		source = slices.Delete(source, i, i+1)
	}
	return append(out, source...)
}

// Choose returns a random element, or false for an empty slice.
func Choose[T any](r *Rand, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[r.Number(len(items))], true
}
