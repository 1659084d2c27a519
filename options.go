package swaplock

import "time"

// Option configures drain behavior for a table pair.
type Option func(*config)

type config struct {
	spinCount  int
	maxBackoff time.Duration
}

const (
	defaultSpinCount  = 128
	defaultMaxBackoff = time.Millisecond
)

// WithSpinCount sets how many scan iterations the writer's drain spends
// yielding the processor before it starts sleeping between scans.
func WithSpinCount(n int) Option {
	return func(c *config) {
		c.spinCount = n
	}
}

// WithMaxBackoff caps the sleep between drain scans once the writer has
// stopped spinning. The drain never times out; a long-lived read guard stalls
// the next writer until it is released.
func WithMaxBackoff(d time.Duration) Option {
	return func(c *config) {
		c.maxBackoff = d
	}
}

func applyOptions(opts []Option) config {
	cfg := config{
		spinCount:  defaultSpinCount,
		maxBackoff: defaultMaxBackoff,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
