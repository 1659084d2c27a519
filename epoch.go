package swaplock

import (
	"sync"
	"sync/atomic"
)

// Each reader handle owns an epoch counter. Parity encodes guard presence:
// even means idle, odd means a read guard is held. Acquiring a guard
// increments the epoch before loading the active table; releasing increments
// it again. The writer never touches the counters, it only reads them.
//
// The registry is the shared view of all epoch cells. Registration locks a
// mutex, so creating or closing a handle contends with the writer's epoch
// scans, but never with reads themselves.
type readerRegistry struct {
	mu     sync.Mutex
	next   uint64
	epochs map[uint64]*atomic.Uint64
}

func newReaderRegistry() *readerRegistry {
	return &readerRegistry{epochs: make(map[uint64]*atomic.Uint64)}
}

func (r *readerRegistry) register() (uint64, *atomic.Uint64) {
	cell := &atomic.Uint64{}
	r.mu.Lock()
	key := r.next
	r.next++
	r.epochs[key] = cell
	r.mu.Unlock()
	return key, cell
}

func (r *readerRegistry) deregister(key uint64) {
	r.mu.Lock()
	delete(r.epochs, key)
	r.mu.Unlock()
}

func (r *readerRegistry) len() int {
	r.mu.Lock()
	n := len(r.epochs)
	r.mu.Unlock()
	return n
}

// snapshotBlocking records, into blocking, every reader that holds a guard at
// the moment of the call: {key -> odd epoch observed}. Called by the writer
// immediately after a swap; the recorded readers are the only ones that can
// still reference the new standby. Handles registered later start on the new
// active table and are deliberately absent.
func (r *readerRegistry) snapshotBlocking(blocking map[uint64]uint64) {
	r.mu.Lock()
	for key, cell := range r.epochs {
		if epoch := cell.Load(); epoch%2 != 0 {
			blocking[key] = epoch
		}
	}
	r.mu.Unlock()
}

// collectReleased removes from blocking every reader that has moved on: its
// epoch advanced past the snapshot, or its handle was closed. When blocking
// is empty the standby table is reader-free.
func (r *readerRegistry) collectReleased(blocking map[uint64]uint64) {
	r.mu.Lock()
	for key, snapshot := range blocking {
		cell, ok := r.epochs[key]
		if !ok || cell.Load() != snapshot {
			delete(blocking, key)
		}
	}
	r.mu.Unlock()
}
