// Package asvec wraps a slice in an active-standby table pair. Mutating
// methods build replayable updates internally.
//
// Elements live in both copies of the slice. If T carries pointers, the two
// copies share what they point at; treat stored elements as immutable, or
// store value types.
package asvec

import (
	"slices"

	"github.com/CreditWorthy/swaplock"
)

// Handle is a per-goroutine handle on the slice pair. Reads are lock-free.
type Handle[T any] struct {
	h *swaplock.Handle[[]T]
}

// New returns a handle on an empty slice pair.
func New[T any](opts ...swaplock.Option) *Handle[T] {
	return From[T](nil, opts...)
}

// From seeds the pair from s. The slice is cloned; the caller keeps ownership
// of the original.
func From[T any](s []T, opts ...swaplock.Option) *Handle[T] {
	return &Handle[T]{
		h: swaplock.FromIdentical(slices.Clone(s), slices.Clone(s), opts...),
	}
}

// Clone returns a new handle on the same pair, for another goroutine.
func (h *Handle[T]) Clone() *Handle[T] {
	return &Handle[T]{h: h.h.Clone()}
}

// Close deregisters the handle. See swaplock.Handle.Close.
func (h *Handle[T]) Close() error { return h.h.Close() }

// Read returns a read guard on the active slice.
func (h *Handle[T]) Read() ReadGuard[T] {
	g := h.h.Read()
	return ReadGuard[T]{g: &g}
}

// Write starts a write cycle on the pair.
func (h *Handle[T]) Write() (*WriteGuard[T], error) {
	g, err := h.h.Write()
	if err != nil {
		return nil, err
	}
	return &WriteGuard[T]{g: g}, nil
}

// Lock is the shared-handle form of the slice pair.
type Lock[T any] struct {
	l *swaplock.Lock[[]T]
}

// NewLock returns a shared handle on an empty slice pair.
func NewLock[T any]() *Lock[T] {
	return LockFrom[T](nil)
}

// LockFrom seeds the pair from s, cloning it.
func LockFrom[T any](s []T) *Lock[T] {
	return &Lock[T]{
		l: swaplock.LockFromIdentical(slices.Clone(s), slices.Clone(s)),
	}
}

// Read returns a read guard on the active slice.
func (l *Lock[T]) Read() (ReadGuard[T], error) {
	g, err := l.l.Read()
	if err != nil {
		return ReadGuard[T]{}, err
	}
	return ReadGuard[T]{g: g}, nil
}

// Write starts a write cycle on the pair.
func (l *Lock[T]) Write() (*WriteGuard[T], error) {
	g, err := l.l.Write()
	if err != nil {
		return nil, err
	}
	return &WriteGuard[T]{g: g}, nil
}

// ReadGuard exposes read methods over a pinned slice. Unlock releases the
// pin. Works the same over either a Handle or a Lock.
type ReadGuard[T any] struct {
	g swaplock.ReadAccess[[]T]
}

// Len returns the number of elements.
func (r *ReadGuard[T]) Len() int { return len(*r.g.Table()) }

// At returns the element at index i.
func (r *ReadGuard[T]) At(i int) T { return (*r.g.Table())[i] }

// Range calls f for each element in order until f returns false.
func (r *ReadGuard[T]) Range(f func(i int, v T) bool) {
	for i, v := range *r.g.Table() {
		if !f(i, v) {
			return
		}
	}
}

// Unlock releases the pinned slice.
func (r *ReadGuard[T]) Unlock() { r.g.Unlock() }

// WriteGuard exposes mutating methods for one write cycle. Read methods
// observe the standby, so they already include this cycle's mutations.
type WriteGuard[T any] struct {
	g swaplock.WriteAccess[[]T]
}

// Push appends v.
func (w *WriteGuard[T]) Push(v T) {
	w.g.Update(swaplock.UpdateFunc[[]T](func(s *[]T) {
		*s = append(*s, v)
	}))
}

// Pop removes and returns the last element. ok is false on an empty slice.
func (w *WriteGuard[T]) Pop() (v T, ok bool) {
	type popped struct {
		v  T
		ok bool
	}
	res := swaplock.Apply(w.g, func(s *[]T) popped {
		if len(*s) == 0 {
			return popped{}
		}
		last := (*s)[len(*s)-1]
		*s = (*s)[:len(*s)-1]
		return popped{v: last, ok: true}
	})
	return res.v, res.ok
}

// Insert inserts v at index i, shifting later elements right.
func (w *WriteGuard[T]) Insert(i int, v T) {
	w.g.Update(swaplock.UpdateFunc[[]T](func(s *[]T) {
		*s = slices.Insert(*s, i, v)
	}))
}

// Remove removes and returns the element at index i, shifting later elements
// left.
func (w *WriteGuard[T]) Remove(i int) T {
	return swaplock.Apply(w.g, func(s *[]T) T {
		v := (*s)[i]
		*s = slices.Delete(*s, i, i+1)
		return v
	})
}

// Set replaces the element at index i.
func (w *WriteGuard[T]) Set(i int, v T) {
	w.g.Update(swaplock.UpdateFunc[[]T](func(s *[]T) {
		(*s)[i] = v
	}))
}

// Swap exchanges the elements at i and j.
func (w *WriteGuard[T]) Swap(i, j int) {
	w.g.Update(swaplock.UpdateFunc[[]T](func(s *[]T) {
		(*s)[i], (*s)[j] = (*s)[j], (*s)[i]
	}))
}

// Truncate shortens the slice to n elements. A no-op when it already has n or
// fewer.
func (w *WriteGuard[T]) Truncate(n int) {
	w.g.Update(swaplock.UpdateFunc[[]T](func(s *[]T) {
		if n < len(*s) {
			*s = (*s)[:n]
		}
	}))
}

// Clear removes every element.
func (w *WriteGuard[T]) Clear() {
	w.g.Update(swaplock.UpdateFunc[[]T](func(s *[]T) {
		*s = (*s)[:0]
	}))
}

// Retain keeps only the elements for which keep returns true, preserving
// order. keep must be deterministic over the element alone; it runs once per
// copy.
func (w *WriteGuard[T]) Retain(keep func(v T) bool) {
	w.g.Update(swaplock.UpdateFunc[[]T](func(s *[]T) {
		*s = slices.DeleteFunc(*s, func(v T) bool { return !keep(v) })
	}))
}

// Drain removes every element and returns them in order. The returned slice
// is owned by the caller.
func (w *WriteGuard[T]) Drain() []T {
	return swaplock.Apply(w.g, func(s *[]T) []T {
		out := slices.Clone(*s)
		*s = (*s)[:0]
		return out
	})
}

// Len returns the element count in the standby.
func (w *WriteGuard[T]) Len() int { return len(*w.g.Table()) }

// At returns the element at index i in the standby.
func (w *WriteGuard[T]) At(i int) T { return (*w.g.Table())[i] }

// Unlock ends the write cycle and publishes the standby.
func (w *WriteGuard[T]) Unlock() { w.g.Unlock() }
