package swaplock

import "errors"

var (
	ErrPoisoned = errors.New("swaplock: tables are poisoned")
	ErrClosed   = errors.New("swaplock: handle is closed")
)
