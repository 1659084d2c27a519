// Package asset wraps a set of comparable elements in an active-standby
// table pair. Mutating methods build replayable updates internally.
package asset

import (
	"maps"

	"github.com/CreditWorthy/swaplock"
)

type set[K comparable] = map[K]struct{}

// Handle is a per-goroutine handle on the set pair. Reads are lock-free.
type Handle[K comparable] struct {
	h *swaplock.Handle[set[K]]
}

// New returns a handle on an empty set pair.
func New[K comparable](opts ...swaplock.Option) *Handle[K] {
	return From[K](nil, opts...)
}

// From seeds the pair with the given elements.
func From[K comparable](elems []K, opts ...swaplock.Option) *Handle[K] {
	return &Handle[K]{
		h: swaplock.FromIdentical(fromElems(elems), fromElems(elems), opts...),
	}
}

func fromElems[K comparable](elems []K) set[K] {
	s := make(set[K], len(elems))
	for _, k := range elems {
		s[k] = struct{}{}
	}
	return s
}

// Clone returns a new handle on the same pair, for another goroutine.
func (h *Handle[K]) Clone() *Handle[K] {
	return &Handle[K]{h: h.h.Clone()}
}

// Close deregisters the handle. See swaplock.Handle.Close.
func (h *Handle[K]) Close() error { return h.h.Close() }

// Read returns a read guard on the active set.
func (h *Handle[K]) Read() ReadGuard[K] {
	g := h.h.Read()
	return ReadGuard[K]{g: &g}
}

// Write starts a write cycle on the pair.
func (h *Handle[K]) Write() (*WriteGuard[K], error) {
	g, err := h.h.Write()
	if err != nil {
		return nil, err
	}
	return &WriteGuard[K]{g: g}, nil
}

// Lock is the shared-handle form of the set pair.
type Lock[K comparable] struct {
	l *swaplock.Lock[set[K]]
}

// NewLock returns a shared handle on an empty set pair.
func NewLock[K comparable]() *Lock[K] {
	return LockFrom[K](nil)
}

// LockFrom seeds the pair with the given elements.
func LockFrom[K comparable](elems []K) *Lock[K] {
	return &Lock[K]{
		l: swaplock.LockFromIdentical(fromElems(elems), fromElems(elems)),
	}
}

// Read returns a read guard on the active set.
func (l *Lock[K]) Read() (ReadGuard[K], error) {
	g, err := l.l.Read()
	if err != nil {
		return ReadGuard[K]{}, err
	}
	return ReadGuard[K]{g: g}, nil
}

// Write starts a write cycle on the pair.
func (l *Lock[K]) Write() (*WriteGuard[K], error) {
	g, err := l.l.Write()
	if err != nil {
		return nil, err
	}
	return &WriteGuard[K]{g: g}, nil
}

// ReadGuard exposes read methods over a pinned set. Unlock releases the pin.
type ReadGuard[K comparable] struct {
	g swaplock.ReadAccess[set[K]]
}

// Contains reports whether k is in the set.
func (r *ReadGuard[K]) Contains(k K) bool {
	_, ok := (*r.g.Table())[k]
	return ok
}

// Len returns the number of elements.
func (r *ReadGuard[K]) Len() int { return len(*r.g.Table()) }

// Range calls f for every element until f returns false.
func (r *ReadGuard[K]) Range(f func(k K) bool) {
	for k := range *r.g.Table() {
		if !f(k) {
			return
		}
	}
}

// Unlock releases the pinned set.
func (r *ReadGuard[K]) Unlock() { r.g.Unlock() }

// WriteGuard exposes mutating methods for one write cycle. Read methods
// observe the standby, so they already include this cycle's mutations.
type WriteGuard[K comparable] struct {
	g swaplock.WriteAccess[set[K]]
}

// Add inserts k and reports whether it was absent.
func (w *WriteGuard[K]) Add(k K) bool {
	return swaplock.Apply(w.g, func(s *set[K]) bool {
		_, present := (*s)[k]
		(*s)[k] = struct{}{}
		return !present
	})
}

// Remove deletes k and reports whether it was present.
func (w *WriteGuard[K]) Remove(k K) bool {
	return swaplock.Apply(w.g, func(s *set[K]) bool {
		_, present := (*s)[k]
		delete(*s, k)
		return present
	})
}

// Clear removes every element.
func (w *WriteGuard[K]) Clear() {
	w.g.Update(swaplock.UpdateFunc[set[K]](func(s *set[K]) {
		clear(*s)
	}))
}

// Retain keeps only the elements for which keep returns true. keep must be
// deterministic over the element alone; it runs once per copy.
func (w *WriteGuard[K]) Retain(keep func(k K) bool) {
	w.g.Update(swaplock.UpdateFunc[set[K]](func(s *set[K]) {
		maps.DeleteFunc(*s, func(k K, _ struct{}) bool { return !keep(k) })
	}))
}

// Contains reports whether k is in the standby, including this cycle's
// writes.
func (w *WriteGuard[K]) Contains(k K) bool {
	_, ok := (*w.g.Table())[k]
	return ok
}

// Len returns the element count in the standby.
func (w *WriteGuard[K]) Len() int { return len(*w.g.Table()) }

// Unlock ends the write cycle and publishes the standby.
func (w *WriteGuard[K]) Unlock() { w.g.Unlock() }
