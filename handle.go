package swaplock

import "sync/atomic"

// Handle is one reader's entry point to a table pair. Read never blocks and
// never allocates; the cost is that each goroutine (or each independent
// reader) needs its own Handle, cloned from an existing one.
//
// A Handle must not be shared between goroutines. The write side is shared:
// Write on any handle of the same pair competes for the same writer mutex.
type Handle[T any] struct {
	c     *core[T]
	key   uint64
	epoch *atomic.Uint64

	closed bool
}

// New builds a table pair from initial and returns the first handle. clone
// produces the second copy; pass nil to copy by plain assignment, which is
// only correct for tables without interior pointers (no maps, slices, or
// pointer fields shared between the two copies).
func New[T any](initial T, clone func(T) T, opts ...Option) *Handle[T] {
	second := initial
	if clone != nil {
		second = clone(initial)
	}
	return FromIdentical(initial, second, opts...)
}

// FromIdentical builds a table pair from two tables the caller promises are
// equal and share no mutable state. Updates must keep them equal; see Update.
func FromIdentical[T any](t0, t1 T, opts ...Option) *Handle[T] {
	c := newCore(&t0, &t1, applyOptions(opts))
	return newHandle(c)
}

func newHandle[T any](c *core[T]) *Handle[T] {
	h := &Handle[T]{c: c}
	h.key, h.epoch = c.readers.register()
	return h
}

// Clone returns a new handle on the same table pair, for handing to another
// goroutine. Clone and Close are the only handle operations on the read side
// that take a lock.
func (h *Handle[T]) Clone() *Handle[T] {
	if h.closed {
		panic("swaplock: Clone of closed Handle")
	}
	return newHandle(h.c)
}

// Read returns a guard on the active table. It never blocks: at worst the
// table is one write cycle stale. Guards do not nest; release the previous
// guard before acquiring the next.
//
// A guard still held when a write cycle swaps the tables keeps the following
// write cycle from beginning until it is released, so keep read sections
// short or move long scans to their own cloned handle.
func (h *Handle[T]) Read() ReadGuard[T] {
	if h.closed {
		panic("swaplock: Read on closed Handle")
	}
	if h.epoch.Load()%2 != 0 {
		panic("swaplock: Read while ReadGuard is still held")
	}
	// Odd epoch first, then load. The writer snapshots epochs only after the
	// swap, so a reader seen odd is at worst on the table that just became
	// standby, which is exactly what the drain waits for.
	h.epoch.Add(1)
	return ReadGuard[T]{
		table: h.c.tables.activeTable(),
		epoch: h.epoch,
	}
}

// Write starts a write cycle. It blocks until the previous cycle's readers
// have drained off the standby, replays the pending updates, and returns the
// exclusive guard. Any handle of the pair may call Write; cycles are
// serialized across all of them.
func (h *Handle[T]) Write() (*WriteGuard[T], error) {
	if h.closed {
		return nil, ErrClosed
	}
	return h.c.write()
}

// Close deregisters the handle so the writer stops considering it during
// drains. Closing with a ReadGuard outstanding panics, since the guard's
// table could otherwise be mutated under it.
func (h *Handle[T]) Close() error {
	if h.closed {
		return ErrClosed
	}
	if h.epoch.Load()%2 != 0 {
		panic("swaplock: Close with ReadGuard still held")
	}
	h.closed = true
	h.c.readers.deregister(h.key)
	return nil
}

// ReadGuard pins the table returned by Table until Unlock. It is a value;
// copying it and unlocking both copies panics the same as a double Unlock.
type ReadGuard[T any] struct {
	table *T
	epoch *atomic.Uint64
}

// Table returns the pinned table. Callers must treat it as read-only.
func (g *ReadGuard[T]) Table() *T {
	if g.epoch == nil {
		panic("swaplock: use of released ReadGuard")
	}
	return g.table
}

// Unlock releases the pin. After the last pre-swap guard unlocks, the next
// writer's drain completes.
func (g *ReadGuard[T]) Unlock() {
	if g.epoch == nil {
		panic("swaplock: ReadGuard released twice")
	}
	// An even epoch means a copy of this guard was already released.
	if g.epoch.Load()%2 == 0 {
		panic("swaplock: ReadGuard released twice")
	}
	g.epoch.Add(1)
	g.epoch = nil
	g.table = nil
}
