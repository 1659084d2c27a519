package swaplock

import (
	"runtime"
	"time"
)

// backoff paces the writer's drain loop: yield for the first spinCount
// rounds, then sleep with exponential growth up to maxBackoff.
type backoff struct {
	cfg   config
	spins int
	sleep time.Duration
}

func newBackoff(cfg config) backoff {
	return backoff{cfg: cfg}
}

func (b *backoff) wait() {
	if b.spins < b.cfg.spinCount {
		b.spins++
		runtime.Gosched()
		return
	}
	if b.sleep == 0 {
		b.sleep = time.Microsecond
	} else if b.sleep < b.cfg.maxBackoff {
		b.sleep *= 2
		if b.sleep > b.cfg.maxBackoff {
			b.sleep = b.cfg.maxBackoff
		}
	}
	time.Sleep(b.sleep)
}
