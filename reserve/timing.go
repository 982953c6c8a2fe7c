package reserve

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/bindkit/gpucore"
)

// TimingSize is the size of the timing record: elapsed and frame time in
// milliseconds, two float32.
const TimingSize = 8

// Timing writes elapsed time and frame delta to a uniform buffer.
type Timing struct {
	clock  Clock
	start  time.Time
	last   time.Time
	buffer gpucore.BufferID

	elapsed float32
	delta   float32
}

// NewTiming creates the timing buffer. Elapsed time is measured from the
// clock's epoch, process start for the system clock, or from this call for
// clocks without one.
func NewTiming(ctx gpucore.Context, clock Clock) (*Timing, error) {
	if clock == nil {
		clock = SystemClock()
	}
	buf, err := ctx.CreateBuffer(&gpucore.BufferDesc{
		Label: "reserved timing",
		Size:  TimingSize,
		Usage: gpucore.BufferUsageUniform | gpucore.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("reserve: timing buffer: %w", err)
	}
	now := clock.Now()
	start := now
	if e, ok := clock.(epochClock); ok {
		start = e.Epoch()
	}
	return &Timing{clock: clock, start: start, last: now, buffer: buf}, nil
}

func (*Timing) reserved() {}

// Name returns TimingName.
func (*Timing) Name() string { return TimingName }

// Update records the elapsed time and the delta since the previous
// Update, then writes both to the buffer. Durations come from the
// monotonic clock reading, so wall-clock steps do not affect them.
func (t *Timing) Update(ctx gpucore.Context) error {
	now := t.clock.Now()
	elapsed := max(now.Sub(t.start), t.last.Sub(t.start))
	delta := max(now.Sub(t.last), 0)
	t.last = t.start.Add(elapsed)

	t.elapsed = milliseconds(elapsed)
	t.delta = milliseconds(delta)

	var data [TimingSize]byte
	binary.LittleEndian.PutUint32(data[0:], math.Float32bits(t.elapsed))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(t.delta))
	if err := gpucore.WriteBuffer(ctx, t.buffer, 0, data[:]); err != nil {
		return fmt.Errorf("reserve: write timing: %w", err)
	}
	return nil
}

// Elapsed returns the elapsed time written by the last Update, in
// milliseconds.
func (t *Timing) Elapsed() float32 { return t.elapsed }

// Delta returns the frame time written by the last Update, in
// milliseconds.
func (t *Timing) Delta() float32 { return t.delta }

// Binding returns the timing buffer at binding 0.
func (t *Timing) Binding() ReservedBinding {
	return DirectBinding(gpucore.BindingInfo{
		Resource: gpucore.UniformBuffer(gpucore.BufferView{Buffer: t.buffer, Size: TimingSize}),
		Binding:  0,
	})
}

// Destroy releases the timing buffer.
func (t *Timing) Destroy(ctx gpucore.Context) {
	ctx.DestroyBuffer(t.buffer)
}

func milliseconds(d time.Duration) float32 {
	return float32(d.Seconds() * 1000)
}
