package pool

import "fmt"

// Default pool sizes.
const (
	DefaultInitialCapacity = 512
	DefaultChunkSize       = 128
)

// Config sizes a Pool. Zero fields fall back to the defaults.
type Config struct {
	// InitialCapacity is the number of slots created by New.
	InitialCapacity int

	// ChunkSize is the number of slots added when the free list runs dry.
	ChunkSize int
}

// DefaultConfig returns the default pool sizes.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: DefaultInitialCapacity,
		ChunkSize:       DefaultChunkSize,
	}
}

func (c Config) withDefaults() (Config, error) {
	if c.InitialCapacity < 0 || c.ChunkSize < 0 {
		return c, fmt.Errorf("%w: initial=%d chunk=%d", ErrInvalidConfig, c.InitialCapacity, c.ChunkSize)
	}
	if c.InitialCapacity == 0 {
		c.InitialCapacity = DefaultInitialCapacity
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	return c, nil
}
