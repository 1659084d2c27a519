package swaplock

import (
	"sync"
	"sync/atomic"
)

// Lock is the shared-handle variant of the table pair: one value serves any
// number of goroutines directly, no per-reader handles, no cloning. Readers
// pay an RWMutex RLock per read instead of an atomic increment.
//
// Each table carries its own RWMutex. Readers read-lock whichever table is
// active when they arrive; the writer's drain is simply write-locking the
// standby, which blocks until the readers still on it from before the swap
// have released.
type Lock[T any] struct {
	active  atomic.Pointer[rwTable[T]]
	standby atomic.Pointer[rwTable[T]]

	// opsMu serializes write cycles, like core.mu in the handle variant.
	opsMu sync.Mutex

	log      []Update[T]
	poisoned atomic.Bool
}

type rwTable[T any] struct {
	mu    sync.RWMutex
	table T
}

// NewLock builds a shared-handle table pair from initial. clone has the same
// contract as in New: nil means plain assignment.
func NewLock[T any](initial T, clone func(T) T) *Lock[T] {
	second := initial
	if clone != nil {
		second = clone(initial)
	}
	return LockFromIdentical(initial, second)
}

// LockFromIdentical builds a shared-handle pair from two tables the caller
// promises are equal and share no mutable state.
func LockFromIdentical[T any](t0, t1 T) *Lock[T] {
	l := &Lock[T]{}
	l.active.Store(&rwTable[T]{table: t0})
	l.standby.Store(&rwTable[T]{table: t1})
	return l
}

// Read returns a guard on the active table, blocking only if a writer is
// between draining this table and swapping it back in, which is brief. The
// guard must be released before this goroutine reads again.
func (l *Lock[T]) Read() (*LockReadGuard[T], error) {
	if l.poisoned.Load() {
		return nil, ErrPoisoned
	}
	// The active pointer may swap between the load and the RLock. That is
	// fine: the table locked here is then the standby, and the next writer's
	// drain waits for this guard like any pre-swap reader.
	t := l.active.Load()
	t.mu.RLock()
	return &LockReadGuard[T]{t: t}, nil
}

// Write starts a write cycle: wait out the readers still on the standby,
// replay the previous cycle's updates, and return the exclusive guard.
func (l *Lock[T]) Write() (*LockWriteGuard[T], error) {
	if l.poisoned.Load() {
		return nil, ErrPoisoned
	}
	l.opsMu.Lock()
	if l.poisoned.Load() {
		l.opsMu.Unlock()
		return nil, ErrPoisoned
	}

	// The drain. Readers that arrived after the last swap hold the other
	// table's lock and are not waited on.
	st := l.standby.Load()
	st.mu.Lock()

	replayed := false
	defer func() {
		if !replayed {
			l.poisoned.Store(true)
			st.mu.Unlock()
			l.opsMu.Unlock()
		}
	}()
	for _, op := range l.log {
		op.ApplySecond(&st.table)
	}
	clear(l.log)
	l.log = l.log[:0]
	replayed = true

	return &LockWriteGuard[T]{l: l, st: st}, nil
}

// LockReadGuard pins the table returned by Table until Unlock.
type LockReadGuard[T any] struct {
	t *rwTable[T]
}

// Table returns the pinned table. Callers must treat it as read-only.
func (g *LockReadGuard[T]) Table() *T {
	if g.t == nil {
		panic("swaplock: use of released LockReadGuard")
	}
	return &g.t.table
}

// Unlock releases the pin.
func (g *LockReadGuard[T]) Unlock() {
	if g.t == nil {
		panic("swaplock: LockReadGuard released twice")
	}
	g.t.mu.RUnlock()
	g.t = nil
}

// LockWriteGuard is the exclusive writer access for one cycle of a Lock. It
// holds the standby write-locked; Unlock swaps the tables.
type LockWriteGuard[T any] struct {
	l    *Lock[T]
	st   *rwTable[T]
	done bool
}

// Update applies op.ApplyFirst to the standby table and logs op for replay on
// the other table next cycle. See Update for the contract.
func (g *LockWriteGuard[T]) Update(op Update[T]) {
	if g.done {
		panic("swaplock: use of released LockWriteGuard")
	}
	applied := false
	defer func() {
		if !applied {
			g.l.poisoned.Store(true)
		}
	}()
	op.ApplyFirst(&g.st.table)
	applied = true
	g.l.log = append(g.l.log, op)
}

// UpdateFunc submits f as a replayable closure update.
func (g *LockWriteGuard[T]) UpdateFunc(f func(*T)) {
	g.Update(UpdateFunc[T](f))
}

// Table returns the standby table, reflecting all updates submitted so far
// this cycle. Callers must treat it as read-only.
func (g *LockWriteGuard[T]) Table() *T {
	if g.done {
		panic("swaplock: use of released LockWriteGuard")
	}
	return &g.st.table
}

// Unlock ends the write cycle: release the standby's write lock, then publish
// it as the new active table. If an update panicked during the cycle the swap
// is skipped and the tables stay frozen.
func (g *LockWriteGuard[T]) Unlock() {
	if g.done {
		panic("swaplock: LockWriteGuard released twice")
	}
	g.done = true
	l := g.l

	if l.poisoned.Load() {
		g.st.mu.Unlock()
		l.opsMu.Unlock()
		return
	}

	// Unlock before the swap so readers racing the pointer flip can take the
	// RLock either way: on the old active table (they become the next drain's
	// wait set) or on the newly published one.
	g.st.mu.Unlock()
	old := l.active.Load()
	l.active.Store(g.st)
	l.standby.Store(old)
	l.opsMu.Unlock()
}
