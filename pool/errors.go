package pool

import "errors"

var (
	// ErrInvalidHandle is returned for handles whose slot is outside the
	// pool or was never allocated.
	ErrInvalidHandle = errors.New("pool: invalid handle")

	// ErrStaleHandle is returned for handles whose slot has been freed
	// (and possibly reused) since the handle was issued.
	ErrStaleHandle = errors.New("pool: stale handle")

	// ErrInvalidConfig is returned for negative capacities.
	ErrInvalidConfig = errors.New("pool: invalid config")
)
