package reserve

import (
	"time"

	"github.com/gogpu/bindkit/pool"
)

// Clock supplies the current time to the timing resource. Times must
// carry a monotonic reading; time.Now does.
//
// A clock that also implements Epoch() time.Time sets the zero of elapsed
// time. Without it elapsed time counts from the creation of the timing
// resource.
type Clock interface {
	Now() time.Time
}

type epochClock interface {
	Epoch() time.Time
}

// processStart is the zero of elapsed time for the system clock.
var processStart = time.Now()

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Epoch() time.Time { return processStart }

// SystemClock returns the clock backed by time.Now. Its elapsed time is
// process-relative.
func SystemClock() Clock { return systemClock{} }

// Option configures a Registry during creation.
//
// Example:
//
//	reg, err := reserve.New(ctx, reserve.FullCatalog(),
//		reserve.WithPoolConfig(pool.Config{InitialCapacity: 64}))
type Option func(*options)

// options holds optional configuration for Registry creation.
type options struct {
	clock      Clock
	poolConfig pool.Config
}

// defaultOptions returns the default registry options.
func defaultOptions() options {
	return options{
		clock:      SystemClock(),
		poolConfig: pool.DefaultConfig(),
	}
}

// WithClock sets the clock of the timing resource. Tests use it to
// simulate frame times.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithPoolConfig sizes the bindless camera pool.
func WithPoolConfig(cfg pool.Config) Option {
	return func(o *options) {
		o.poolConfig = cfg
	}
}
