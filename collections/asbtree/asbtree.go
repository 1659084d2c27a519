// Package asbtree wraps an ordered collection, backed by google/btree, in an
// active-standby table pair. The second copy is produced with the btree's
// copy-on-write Clone, so seeding is cheap; the copies diverge node by node
// as updates are replayed onto each.
//
// Items live in both copies. If I carries pointers, the copies share what
// they point at; treat stored items as immutable, or store value types.
package asbtree

import (
	"github.com/google/btree"

	"github.com/CreditWorthy/swaplock"
)

// DefaultDegree is the btree branching factor used by New and NewLock.
const DefaultDegree = 32

type tree[I any] = *btree.BTreeG[I]

// Handle is a per-goroutine handle on the tree pair. Reads are lock-free.
type Handle[I any] struct {
	h *swaplock.Handle[tree[I]]
}

// New returns a handle on an empty tree pair ordered by less.
func New[I any](less btree.LessFunc[I], opts ...swaplock.Option) *Handle[I] {
	return NewDegree(DefaultDegree, less, opts...)
}

// NewDegree is New with an explicit branching factor.
func NewDegree[I any](degree int, less btree.LessFunc[I], opts ...swaplock.Option) *Handle[I] {
	t := btree.NewG(degree, less)
	return &Handle[I]{
		h: swaplock.FromIdentical(t, t.Clone(), opts...),
	}
}

// Clone returns a new handle on the same pair, for another goroutine.
func (h *Handle[I]) Clone() *Handle[I] {
	return &Handle[I]{h: h.h.Clone()}
}

// Close deregisters the handle. See swaplock.Handle.Close.
func (h *Handle[I]) Close() error { return h.h.Close() }

// Read returns a read guard on the active tree.
func (h *Handle[I]) Read() ReadGuard[I] {
	g := h.h.Read()
	return ReadGuard[I]{g: &g}
}

// Write starts a write cycle on the pair.
func (h *Handle[I]) Write() (*WriteGuard[I], error) {
	g, err := h.h.Write()
	if err != nil {
		return nil, err
	}
	return &WriteGuard[I]{g: g}, nil
}

// Lock is the shared-handle form of the tree pair.
type Lock[I any] struct {
	l *swaplock.Lock[tree[I]]
}

// NewLock returns a shared handle on an empty tree pair ordered by less.
func NewLock[I any](less btree.LessFunc[I]) *Lock[I] {
	t := btree.NewG(DefaultDegree, less)
	return &Lock[I]{l: swaplock.LockFromIdentical(t, t.Clone())}
}

// Read returns a read guard on the active tree.
func (l *Lock[I]) Read() (ReadGuard[I], error) {
	g, err := l.l.Read()
	if err != nil {
		return ReadGuard[I]{}, err
	}
	return ReadGuard[I]{g: g}, nil
}

// Write starts a write cycle on the pair.
func (l *Lock[I]) Write() (*WriteGuard[I], error) {
	g, err := l.l.Write()
	if err != nil {
		return nil, err
	}
	return &WriteGuard[I]{g: g}, nil
}

// ReadGuard exposes read methods over a pinned tree. Unlock releases the pin.
type ReadGuard[I any] struct {
	g swaplock.ReadAccess[tree[I]]
}

// Get returns the item equal to key.
func (r *ReadGuard[I]) Get(key I) (I, bool) { return (*r.g.Table()).Get(key) }

// Has reports whether an item equal to key is present.
func (r *ReadGuard[I]) Has(key I) bool { return (*r.g.Table()).Has(key) }

// Min returns the smallest item.
func (r *ReadGuard[I]) Min() (I, bool) { return (*r.g.Table()).Min() }

// Max returns the largest item.
func (r *ReadGuard[I]) Max() (I, bool) { return (*r.g.Table()).Max() }

// Len returns the number of items.
func (r *ReadGuard[I]) Len() int { return (*r.g.Table()).Len() }

// Ascend calls f for every item in ascending order until f returns false.
func (r *ReadGuard[I]) Ascend(f btree.ItemIteratorG[I]) {
	(*r.g.Table()).Ascend(f)
}

// AscendRange calls f for every item in [greaterOrEqual, lessThan) in
// ascending order until f returns false.
func (r *ReadGuard[I]) AscendRange(greaterOrEqual, lessThan I, f btree.ItemIteratorG[I]) {
	(*r.g.Table()).AscendRange(greaterOrEqual, lessThan, f)
}

// Descend calls f for every item in descending order until f returns false.
func (r *ReadGuard[I]) Descend(f btree.ItemIteratorG[I]) {
	(*r.g.Table()).Descend(f)
}

// Unlock releases the pinned tree.
func (r *ReadGuard[I]) Unlock() { r.g.Unlock() }

// WriteGuard exposes mutating methods for one write cycle. Read methods
// observe the standby, so they already include this cycle's mutations.
type WriteGuard[I any] struct {
	g swaplock.WriteAccess[tree[I]]
}

type deleted[I any] struct {
	item I
	ok   bool
}

// ReplaceOrInsert adds item, returning the equal item it displaced, if any.
func (w *WriteGuard[I]) ReplaceOrInsert(item I) (I, bool) {
	res := swaplock.Apply(w.g, func(t *tree[I]) deleted[I] {
		old, ok := (*t).ReplaceOrInsert(item)
		return deleted[I]{item: old, ok: ok}
	})
	return res.item, res.ok
}

// Delete removes the item equal to key, returning it if it was present.
func (w *WriteGuard[I]) Delete(key I) (I, bool) {
	res := swaplock.Apply(w.g, func(t *tree[I]) deleted[I] {
		old, ok := (*t).Delete(key)
		return deleted[I]{item: old, ok: ok}
	})
	return res.item, res.ok
}

// DeleteMin removes and returns the smallest item.
func (w *WriteGuard[I]) DeleteMin() (I, bool) {
	res := swaplock.Apply(w.g, func(t *tree[I]) deleted[I] {
		old, ok := (*t).DeleteMin()
		return deleted[I]{item: old, ok: ok}
	})
	return res.item, res.ok
}

// DeleteMax removes and returns the largest item.
func (w *WriteGuard[I]) DeleteMax() (I, bool) {
	res := swaplock.Apply(w.g, func(t *tree[I]) deleted[I] {
		old, ok := (*t).DeleteMax()
		return deleted[I]{item: old, ok: ok}
	})
	return res.item, res.ok
}

// Clear removes every item.
func (w *WriteGuard[I]) Clear() {
	w.g.Update(swaplock.UpdateFunc[tree[I]](func(t *tree[I]) {
		(*t).Clear(false)
	}))
}

// Get returns the item equal to key in the standby, including this cycle's
// writes.
func (w *WriteGuard[I]) Get(key I) (I, bool) { return (*w.g.Table()).Get(key) }

// Len returns the item count in the standby.
func (w *WriteGuard[I]) Len() int { return (*w.g.Table()).Len() }

// Unlock ends the write cycle and publishes the standby.
func (w *WriteGuard[I]) Unlock() { w.g.Unlock() }
