// Package pool implements a growable slot pool for bindless resource
// arrays.
//
// Every slot pairs a host value with the device resource that mirrors it.
// Both lists stay index-aligned: slot i of Resources() always belongs to
// the host value behind a handle for slot i. Freed slots go on a LIFO
// free list, so the most recently freed slot is the next one allocated.
// When the free list is empty the pool grows by Config.ChunkSize slots.
// It never shrinks.
//
// Handles carry a generation that is bumped on every Free, so a handle
// kept past Free is rejected by Get instead of aliasing the slot's next
// owner.
//
// A Pool is not safe for concurrent use.
package pool

import (
	"errors"
	"fmt"

	"github.com/gogpu/bindkit"
	"github.com/gogpu/bindkit/gpucore"
)

// Handle identifies an allocated slot. The zero Handle is never valid.
type Handle struct {
	Slot       uint32
	Generation uint32
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	return fmt.Sprintf("slot %d (gen %d)", h.Slot, h.Generation)
}

// Pool is a growable set of paired host and device slots.
type Pool[T any] struct {
	storage Storage[T]
	cfg     Config

	host        []*T
	device      []gpucore.IndexedResource
	generations []uint32
	live        []bool
	dirty       []bool

	// free is a stack of slot indices; the top is the last element.
	free []uint32
}

// New creates a pool and eagerly creates cfg.InitialCapacity slots.
// If any slot cannot be created, the slots created so far are released
// and the error is returned.
func New[T any](ctx gpucore.Context, cfg Config, storage Storage[T]) (*Pool[T], error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	p := &Pool[T]{storage: storage, cfg: cfg}
	if err := p.grow(ctx, cfg.InitialCapacity); err != nil {
		return nil, err
	}
	return p, nil
}

// grow appends n slots. On failure every slot of this chunk is released
// and the pool is left unchanged.
func (p *Pool[T]) grow(ctx gpucore.Context, n int) error {
	base := uint32(len(p.host))
	host := make([]*T, 0, n)
	device := make([]gpucore.IndexedResource, 0, n)

	for i := range n {
		slot := base + uint32(i)
		v, r, err := p.storage.Create(ctx, slot)
		if err != nil {
			for _, d := range device {
				p.storage.Release(ctx, d.Resource)
			}
			return fmt.Errorf("pool: create slot %d: %w", slot, err)
		}
		host = append(host, &v)
		device = append(device, gpucore.IndexedResource{Resource: r, Slot: slot})
	}

	p.host = append(p.host, host...)
	p.device = append(p.device, device...)
	for range n {
		p.generations = append(p.generations, 1)
		p.live = append(p.live, false)
		p.dirty = append(p.dirty, false)
	}
	// Push in descending order so the lowest new slot is on top.
	for i := n - 1; i >= 0; i-- {
		p.free = append(p.free, base+uint32(i))
	}

	bindkit.Logger().Debug("pool: grown",
		"added", n,
		"capacity", len(p.host))
	return nil
}

// Allocate returns a handle to a free slot, growing the pool by one chunk
// when no slot is free.
func (p *Pool[T]) Allocate(ctx gpucore.Context) (Handle, error) {
	if len(p.free) == 0 {
		if err := p.grow(ctx, p.cfg.ChunkSize); err != nil {
			return Handle{}, err
		}
	}
	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.live[slot] = true
	return Handle{Slot: slot, Generation: p.generations[slot]}, nil
}

// Free returns the slot of h to the free list. It reports whether the
// handle was live; freeing an out-of-range, stale or already freed handle
// does nothing.
func (p *Pool[T]) Free(h Handle) bool {
	if err := p.check(h); err != nil {
		bindkit.Logger().Warn("pool: ignoring free", "handle", h, "err", err)
		return false
	}
	p.live[h.Slot] = false
	p.dirty[h.Slot] = false
	p.generations[h.Slot]++
	p.free = append(p.free, h.Slot)
	return true
}

func (p *Pool[T]) check(h Handle) error {
	if int(h.Slot) >= len(p.host) {
		return fmt.Errorf("%w: %s beyond capacity %d", ErrInvalidHandle, h, len(p.host))
	}
	if p.generations[h.Slot] != h.Generation {
		return fmt.Errorf("%w: %s, slot is at gen %d", ErrStaleHandle, h, p.generations[h.Slot])
	}
	if !p.live[h.Slot] {
		return fmt.Errorf("%w: %s is not allocated", ErrInvalidHandle, h)
	}
	return nil
}

// Get returns the host value of a live slot. The value must not be
// modified; use GetMutable for writes.
func (p *Pool[T]) Get(h Handle) (*T, error) {
	if err := p.check(h); err != nil {
		return nil, err
	}
	return p.host[h.Slot], nil
}

// GetMutable returns the host value of a live slot and marks it for the
// next FlushAll.
func (p *Pool[T]) GetMutable(h Handle) (*T, error) {
	if err := p.check(h); err != nil {
		return nil, err
	}
	p.dirty[h.Slot] = true
	return p.host[h.Slot], nil
}

// Flush uploads the host value of one slot to its device resource.
func (p *Pool[T]) Flush(ctx gpucore.Context, h Handle) error {
	if err := p.check(h); err != nil {
		return err
	}
	return p.flush(ctx, h.Slot)
}

func (p *Pool[T]) flush(ctx gpucore.Context, slot uint32) error {
	if err := p.storage.Write(ctx, p.device[slot].Resource, p.host[slot]); err != nil {
		return fmt.Errorf("pool: flush slot %d: %w", slot, err)
	}
	p.dirty[slot] = false
	return nil
}

// FlushAll uploads every slot modified through GetMutable since its last
// flush. Failures do not stop the remaining uploads.
func (p *Pool[T]) FlushAll(ctx gpucore.Context) error {
	var errs []error
	for slot, d := range p.dirty {
		if d {
			if err := p.flush(ctx, uint32(slot)); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Resources returns the device resources of every slot, indexed by slot.
func (p *Pool[T]) Resources() []gpucore.IndexedResource {
	out := make([]gpucore.IndexedResource, len(p.device))
	copy(out, p.device)
	return out
}

// Len returns the number of allocated slots.
func (p *Pool[T]) Len() int {
	return len(p.host) - len(p.free)
}

// Cap returns the number of slots, allocated or free.
func (p *Pool[T]) Cap() int {
	return len(p.host)
}

// Destroy releases every device resource. The pool is empty afterwards.
func (p *Pool[T]) Destroy(ctx gpucore.Context) {
	for _, d := range p.device {
		p.storage.Release(ctx, d.Resource)
	}
	p.host = nil
	p.device = nil
	p.generations = nil
	p.live = nil
	p.dirty = nil
	p.free = nil
}
