package swaplock

import "sync/atomic"

// tablePair owns the two copies of the table and knows which one readers see.
// It only abstracts the pointer juggling; all synchronization between readers
// and the writer lives in the registry and the writer core:
//  1. only one WriteGuard exists at a time,
//  2. the writer replays every update on both tables,
//  3. the writer decides when to swap,
//  4. the writer waits for the standby to be reader-free before mutating it.
//
// Go's atomics are sequentially consistent, so the release store the swap
// requires and the acquire load readers require are both covered.
type tablePair[T any] struct {
	active  atomic.Pointer[T]
	standby atomic.Pointer[T]
}

func newTablePair[T any](t0, t1 *T) *tablePair[T] {
	p := &tablePair[T]{}
	p.active.Store(t0)
	p.standby.Store(t1)
	return p
}

// activeTable is the only entry point readers use.
func (p *tablePair[T]) activeTable() *T {
	return p.active.Load()
}

// standbyTable may only be used while holding the writer mutex, after the
// drain has completed.
func (p *tablePair[T]) standbyTable() *T {
	return p.standby.Load()
}

// swap publishes the standby as the new active table. The single
// linearization point of a write cycle. Only the writer calls this, so the
// two stores cannot race with each other; readers observe the active pointer
// flip atomically.
func (p *tablePair[T]) swap() {
	active := p.active.Load()
	standby := p.standby.Load()
	if active == standby {
		panic("swaplock: table pair corrupted")
	}
	p.active.Store(standby)
	p.standby.Store(active)
}
