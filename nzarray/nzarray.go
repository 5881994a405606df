// Package nzarray provides fixed-length arrays indexed from an arbitrary,
// possibly negative, lower bound, matching PLC array declarations such as
// ARRAY[-2..1] OF BYTE.
//
// Indices are always absolute: a[-1] is element -1, never "the last
// element". An index below the lower bound or above the upper bound is
// an out-of-bounds error.
package nzarray

import (
	"fmt"
	"iter"

	"github.com/wippyai/ads-symbols/errors"
)

// Array is a fixed-length sequence whose first element has index Lower().
type Array[T any] struct {
	elems []T
	lower int
}

// New returns a zero-filled array of length elements starting at lower.
func New[T any](lower, length int) *Array[T] {
	if length < 0 {
		length = 0
	}
	return &Array[T]{lower: lower, elems: make([]T, length)}
}

// From returns an array of length elements starting at lower and assigns
// values to positions lower, lower+1, and so on. Unassigned positions
// stay zero. More values than length is an error.
func From[T any](lower, length int, values ...T) (*Array[T], error) {
	if len(values) > length {
		return nil, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Detail("%d initial values for array of length %d", len(values), length).
			Value(len(values)).
			Build()
	}
	a := New[T](lower, length)
	copy(a.elems, values)
	return a, nil
}

// Wrap adopts elems as the backing storage of an array starting at lower.
func Wrap[T any](lower int, elems []T) *Array[T] {
	return &Array[T]{lower: lower, elems: elems}
}

// Lower returns the first valid index.
func (a *Array[T]) Lower() int { return a.lower }

// Upper returns the last valid index.
func (a *Array[T]) Upper() int { return a.lower + len(a.elems) - 1 }

// Len returns the number of elements.
func (a *Array[T]) Len() int { return len(a.elems) }

func (a *Array[T]) position(index int) (int, error) {
	i := index - a.lower
	if i < 0 || i >= len(a.elems) {
		return 0, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Detail("index %d outside [%d..%d]", index, a.lower, a.Upper()).
			Value(index).
			Build()
	}
	return i, nil
}

// At returns the element at index.
func (a *Array[T]) At(index int) (T, error) {
	i, err := a.position(index)
	if err != nil {
		var zero T
		return zero, err
	}
	return a.elems[i], nil
}

// Set assigns the element at index.
func (a *Array[T]) Set(index int, v T) error {
	i, err := a.position(index)
	if err != nil {
		return err
	}
	a.elems[i] = v
	return nil
}

// Slice returns the elements with indices in [lo, hi). Bounds below the
// lower bound are an error; a high bound past the end is clamped, and
// lo >= hi yields an empty slice. The result shares storage with a.
func (a *Array[T]) Slice(lo, hi int) ([]T, error) {
	start, stop := lo-a.lower, hi-a.lower
	if start < 0 {
		return nil, errors.OutOfBounds(errors.PhaseAccess, nil, lo, len(a.elems))
	}
	if stop < 0 {
		return nil, errors.OutOfBounds(errors.PhaseAccess, nil, hi, len(a.elems))
	}
	stop = min(stop, len(a.elems))
	if start >= stop {
		return a.elems[:0:0], nil
	}
	return a.elems[start:stop], nil
}

// All yields (index, element) pairs from the lower bound upward.
func (a *Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range a.elems {
			if !yield(a.lower+i, v) {
				return
			}
		}
	}
}

// Values returns the elements in index order. The result shares storage with a.
func (a *Array[T]) Values() []T {
	return a.elems
}

func (a *Array[T]) String() string {
	return fmt.Sprintf("[%d..%d]%v", a.lower, a.Upper(), a.elems)
}
