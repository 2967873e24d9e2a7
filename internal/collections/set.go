package collections

import (
	"cmp"
	"fmt"
	"slices"
)

// Set is a generic set backed by a map with zero-size values
type Set[T comparable] map[T]struct{}

// NewSet creates a Set holding the given values
func NewSet[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	s.Add(vs...)
	return s
}

// Add adds one or more values to the set
func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Has checks if the set contains the given value
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values in the set
func (s Set[T]) Len() int {
	return len(s)
}

// Members returns all values in the set, in no particular order
func (s Set[T]) Members() []T {
	r := make([]T, 0, len(s))
	for v := range s {
		r = append(r, v)
	}
	return r
}

func (s Set[T]) String() string {
	return fmt.Sprintf("%v", s.Members())
}

// Sorted returns the members of s in ascending order
func Sorted[T cmp.Ordered](s Set[T]) []T {
	r := s.Members()
	slices.Sort(r)
	return r
}
