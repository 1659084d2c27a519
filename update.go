package swaplock

// Update is a mutation applied once to each of the two tables. ApplyFirst runs
// against the standby table as soon as the update is submitted; ApplySecond
// runs against the other table when the next write cycle replays the log.
//
// The contract: applied in order to two equal tables, (ApplyFirst,
// ApplySecond) must leave them equal. Violations silently diverge the tables.
// The split exists for updates that may only execute once per table, such as
// moving an owned value in on one side and cloning it on the other.
//
// Updates must never be used to hand out references into a table that outlive
// the call; mutating a table through such a reference cannot be mirrored by
// the replay and diverges the copies.
type Update[T any] interface {
	ApplyFirst(table *T)
	ApplySecond(table *T)
}

// UpdateFunc adapts a closure to Update by running it for both applications.
// The closure must be replayable: applied to two equal tables it must leave
// them equal. This is documented, not enforced.
type UpdateFunc[T any] func(table *T)

func (f UpdateFunc[T]) ApplyFirst(table *T)  { f(table) }
func (f UpdateFunc[T]) ApplySecond(table *T) { f(table) }

// WriteAccess is the surface a write guard exposes to collection wrappers and
// generated code: submit updates, inspect the standby table, release the
// guard. Both *WriteGuard and *LockWriteGuard satisfy it.
type WriteAccess[T any] interface {
	// Update applies op.ApplyFirst to the standby table immediately and logs
	// op for replay on the other table during the next write cycle.
	Update(op Update[T])

	// Table returns the standby table. Callers must treat it as read-only;
	// all mutation goes through Update.
	Table() *T

	// Unlock releases the guard, swapping the tables.
	Unlock()
}

// ReadAccess is the read-side counterpart of WriteAccess. Both *ReadGuard and
// *LockReadGuard satisfy it.
type ReadAccess[T any] interface {
	// Table returns the active table. Valid until Unlock.
	Table() *T

	// Unlock releases the guard.
	Unlock()
}

// Apply submits f as a replayable update and returns its result from the
// first application. The result of the replay application is discarded. Like
// UpdateFunc, f must leave two equal tables equal, and the caller must not
// use the result to mutate the table.
func Apply[T, R any](g WriteAccess[T], f func(*T) R) R {
	var res R
	g.Update(UpdateFunc[T](func(table *T) {
		// The replay overwrites res after Apply has returned; by then the
		// caller holds its own copy.
		res = f(table)
	}))
	return res
}
