// Package asmap wraps a map[K]V in an active-standby table pair. Mutating
// methods build replayable updates internally, so callers never have to think
// about the two-copy discipline.
//
// Values are stored in both copies of the map. If V carries pointers, the two
// copies share what they point at; treat stored values as immutable, or store
// value types.
package asmap

import (
	"maps"

	"github.com/CreditWorthy/swaplock"
)

// Handle is a per-goroutine handle on the map pair. Reads are lock-free.
type Handle[K comparable, V any] struct {
	h *swaplock.Handle[map[K]V]
}

// New returns a handle on an empty map pair.
func New[K comparable, V any](opts ...swaplock.Option) *Handle[K, V] {
	return From(map[K]V{}, opts...)
}

// From seeds the pair from m. The map is cloned; the caller keeps ownership
// of the original.
func From[K comparable, V any](m map[K]V, opts ...swaplock.Option) *Handle[K, V] {
	return &Handle[K, V]{
		h: swaplock.FromIdentical(maps.Clone(m), maps.Clone(m), opts...),
	}
}

// Clone returns a new handle on the same pair, for another goroutine.
func (h *Handle[K, V]) Clone() *Handle[K, V] {
	return &Handle[K, V]{h: h.h.Clone()}
}

// Close deregisters the handle. See swaplock.Handle.Close.
func (h *Handle[K, V]) Close() error { return h.h.Close() }

// Read returns a read guard on the active map.
func (h *Handle[K, V]) Read() ReadGuard[K, V] {
	g := h.h.Read()
	return ReadGuard[K, V]{g: &g}
}

// Write starts a write cycle on the pair.
func (h *Handle[K, V]) Write() (*WriteGuard[K, V], error) {
	g, err := h.h.Write()
	if err != nil {
		return nil, err
	}
	return &WriteGuard[K, V]{g: g}, nil
}

// Lock is the shared-handle form of the map pair: one value, any number of
// goroutines, RWMutex-priced reads.
type Lock[K comparable, V any] struct {
	l *swaplock.Lock[map[K]V]
}

// NewLock returns a shared handle on an empty map pair.
func NewLock[K comparable, V any]() *Lock[K, V] {
	return LockFrom(map[K]V{})
}

// LockFrom seeds the pair from m, cloning it.
func LockFrom[K comparable, V any](m map[K]V) *Lock[K, V] {
	return &Lock[K, V]{
		l: swaplock.LockFromIdentical(maps.Clone(m), maps.Clone(m)),
	}
}

// Read returns a read guard on the active map.
func (l *Lock[K, V]) Read() (ReadGuard[K, V], error) {
	g, err := l.l.Read()
	if err != nil {
		return ReadGuard[K, V]{}, err
	}
	return ReadGuard[K, V]{g: g}, nil
}

// Write starts a write cycle on the pair.
func (l *Lock[K, V]) Write() (*WriteGuard[K, V], error) {
	g, err := l.l.Write()
	if err != nil {
		return nil, err
	}
	return &WriteGuard[K, V]{g: g}, nil
}

// ReadGuard exposes read methods over a pinned map. Unlock releases the pin.
// Works the same over either a Handle or a Lock.
type ReadGuard[K comparable, V any] struct {
	g swaplock.ReadAccess[map[K]V]
}

// Get returns the value for k.
func (r *ReadGuard[K, V]) Get(k K) (V, bool) {
	v, ok := (*r.g.Table())[k]
	return v, ok
}

// Len returns the number of entries.
func (r *ReadGuard[K, V]) Len() int { return len(*r.g.Table()) }

// Range calls f for every entry until f returns false.
func (r *ReadGuard[K, V]) Range(f func(k K, v V) bool) {
	for k, v := range *r.g.Table() {
		if !f(k, v) {
			return
		}
	}
}

// Unlock releases the pinned map.
func (r *ReadGuard[K, V]) Unlock() { r.g.Unlock() }

// WriteGuard exposes mutating methods for one write cycle. Every mutation is
// also logged for replay on the other copy. Read methods observe the standby,
// so they already include this cycle's mutations.
type WriteGuard[K comparable, V any] struct {
	g swaplock.WriteAccess[map[K]V]
}

// Set stores v under k.
func (w *WriteGuard[K, V]) Set(k K, v V) {
	w.g.Update(swaplock.UpdateFunc[map[K]V](func(m *map[K]V) {
		(*m)[k] = v
	}))
}

// Delete removes k and reports whether it was present.
func (w *WriteGuard[K, V]) Delete(k K) bool {
	return swaplock.Apply(w.g, func(m *map[K]V) bool {
		_, ok := (*m)[k]
		delete(*m, k)
		return ok
	})
}

// GetOrInsert returns the value under k, storing v first if k was absent.
func (w *WriteGuard[K, V]) GetOrInsert(k K, v V) V {
	return swaplock.Apply(w.g, func(m *map[K]V) V {
		if cur, ok := (*m)[k]; ok {
			return cur
		}
		(*m)[k] = v
		return v
	})
}

// Clear removes every entry.
func (w *WriteGuard[K, V]) Clear() {
	w.g.Update(swaplock.UpdateFunc[map[K]V](func(m *map[K]V) {
		clear(*m)
	}))
}

// Retain keeps only the entries for which keep returns true. keep must be
// deterministic over the entry alone; it runs once per copy.
func (w *WriteGuard[K, V]) Retain(keep func(k K, v V) bool) {
	w.g.Update(swaplock.UpdateFunc[map[K]V](func(m *map[K]V) {
		maps.DeleteFunc(*m, func(k K, v V) bool { return !keep(k, v) })
	}))
}

// Get returns the value for k in the standby, including this cycle's writes.
func (w *WriteGuard[K, V]) Get(k K) (V, bool) {
	v, ok := (*w.g.Table())[k]
	return v, ok
}

// Len returns the entry count in the standby.
func (w *WriteGuard[K, V]) Len() int { return len(*w.g.Table()) }

// Unlock ends the write cycle and publishes the standby.
func (w *WriteGuard[K, V]) Unlock() { w.g.Unlock() }
