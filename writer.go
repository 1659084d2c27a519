package swaplock

import (
	"sync"
	"sync/atomic"
)

// core is the shared state behind every handle: the two tables, the reader
// registry, the writer mutex, and the log of updates awaiting their second
// application.
type core[T any] struct {
	tables  *tablePair[T]
	readers *readerRegistry

	// mu serializes write cycles. Readers never touch it.
	mu sync.Mutex

	// log holds updates already applied to the current active table but not
	// yet to the current standby. Drained at the start of the next cycle.
	log []Update[T]

	// blocking is the set of readers that held a guard when the last swap
	// happened: {reader key -> odd epoch at swap}. Until it empties, those
	// readers may still reference the standby.
	blocking map[uint64]uint64

	// poisoned is set when a user update panics mid-application, leaving one
	// table in an indeterminate state. Further writes are refused and the
	// tables are never swapped again, so readers keep a coherent stale view.
	poisoned atomic.Bool

	cfg config
}

func newCore[T any](t0, t1 *T, cfg config) *core[T] {
	return &core[T]{
		tables:   newTablePair(t0, t1),
		readers:  newReaderRegistry(),
		blocking: make(map[uint64]uint64),
		cfg:      cfg,
	}
}

// write acquires exclusive writer access, drains readers off the standby,
// replays the pending log, and returns a guard for accepting new updates.
//
// The drain is deferred: it runs here rather than when the previous guard was
// released, so a long-lived read guard only ever stalls the next writer, not
// the swap that published the table it is reading.
func (c *core[T]) write() (*WriteGuard[T], error) {
	if c.poisoned.Load() {
		return nil, ErrPoisoned
	}
	c.mu.Lock()
	if c.poisoned.Load() {
		c.mu.Unlock()
		return nil, ErrPoisoned
	}

	c.awaitStandbyFree()

	// Replay the previous cycle's updates on the standby. A panic here means
	// a second application diverged from its first; the tables can no longer
	// be trusted.
	replayed := false
	defer func() {
		if !replayed {
			c.poisoned.Store(true)
			c.mu.Unlock()
		}
	}()
	standby := c.tables.standbyTable()
	for _, op := range c.log {
		op.ApplySecond(standby)
	}
	clear(c.log)
	c.log = c.log[:0]
	replayed = true

	return &WriteGuard[T]{c: c}, nil
}

// awaitStandbyFree spins until no read guard from before the last swap still
// references the standby table. Readers that arrived after the swap observe
// the new active table and are not waited on.
func (c *core[T]) awaitStandbyFree() {
	b := newBackoff(c.cfg)
	for len(c.blocking) > 0 {
		c.readers.collectReleased(c.blocking)
		if len(c.blocking) > 0 {
			b.wait()
		}
	}
}

// applyFirst runs op against the standby with poisoning on panic.
func (c *core[T]) applyFirst(op Update[T], table *T) {
	applied := false
	defer func() {
		if !applied {
			c.poisoned.Store(true)
		}
	}()
	op.ApplyFirst(table)
	applied = true
}

// WriteGuard is the exclusive writer access to the tables for one cycle. Only
// one exists at a time. Submitting an update applies it to the standby
// immediately and logs it for replay; Unlock swaps the tables.
type WriteGuard[T any] struct {
	c    *core[T]
	done bool
}

// Update applies op.ApplyFirst to the standby table and logs op so the next
// cycle can replay it on the other table. See Update for the contract.
func (g *WriteGuard[T]) Update(op Update[T]) {
	if g.done {
		panic("swaplock: use of released WriteGuard")
	}
	g.c.applyFirst(op, g.c.tables.standbyTable())
	g.c.log = append(g.c.log, op)
}

// UpdateFunc submits f as a replayable closure update.
func (g *WriteGuard[T]) UpdateFunc(f func(*T)) {
	g.Update(UpdateFunc[T](f))
}

// Table returns the standby table, reflecting all updates submitted so far
// this cycle. Callers must treat it as read-only.
func (g *WriteGuard[T]) Table() *T {
	if g.done {
		panic("swaplock: use of released WriteGuard")
	}
	return g.c.tables.standbyTable()
}

// Unlock ends the write cycle: swap the tables, then record which readers
// still hold guards on the old active table so the next cycle can wait them
// out. If an update panicked during the cycle the swap is skipped and the
// tables stay frozen.
func (g *WriteGuard[T]) Unlock() {
	if g.done {
		panic("swaplock: WriteGuard released twice")
	}
	g.done = true
	c := g.c

	if c.poisoned.Load() {
		c.mu.Unlock()
		return
	}

	c.tables.swap()
	// The swap precedes the snapshot: any reader seen with an odd epoch now
	// can at worst be on the old active table, which is exactly the set the
	// next drain must wait for.
	c.readers.snapshotBlocking(c.blocking)
	c.mu.Unlock()
}
