package reserve

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gogpu/bindkit/backend/software"
	"github.com/gogpu/bindkit/camera"
	"github.com/gogpu/bindkit/gpucore"
	"github.com/gogpu/bindkit/pool"
	"golang.org/x/image/math/f32"
)

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func readFloats(t *testing.T, ctx *software.Context, id gpucore.BufferID, n int) []float32 {
	t.Helper()
	data, ok := ctx.BufferData(id)
	if !ok {
		t.Fatalf("buffer %d not found", id)
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func directBuffer(t *testing.T, b ReservedBinding) gpucore.BufferID {
	t.Helper()
	info, ok := b.Direct()
	if !ok {
		t.Fatal("expected a direct binding")
	}
	return info.Resource.Buffer.Buffer
}

func smallPool() Option {
	return WithPoolConfig(pool.Config{InitialCapacity: 4, ChunkSize: 2})
}

func TestTimingDelta(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()
	clock := newFakeClock()

	timing, err := NewTiming(ctx, clock)
	if err != nil {
		t.Fatalf("NewTiming failed: %v", err)
	}
	defer timing.Destroy(ctx)
	buf := directBuffer(t, timing.Binding())

	clock.Advance(16 * time.Millisecond)
	if err := timing.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	first := readFloats(t, ctx, buf, 2)
	if math.Abs(float64(first[1]-16)) > 0.01 {
		t.Errorf("delta = %v ms, want 16", first[1])
	}
	if math.Abs(float64(first[0]-16)) > 0.01 {
		t.Errorf("elapsed = %v ms, want 16", first[0])
	}

	clock.Advance(33 * time.Millisecond)
	if err := timing.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	second := readFloats(t, ctx, buf, 2)
	if math.Abs(float64(second[1]-33)) > 0.01 {
		t.Errorf("delta = %v ms, want 33", second[1])
	}
	if second[0] < first[0] {
		t.Errorf("elapsed went backwards: %v -> %v", first[0], second[0])
	}
	if timing.Elapsed() != second[0] || timing.Delta() != second[1] {
		t.Error("accessors disagree with the buffer")
	}
}

func TestTimingClockStepsBack(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()
	clock := newFakeClock()

	timing, err := NewTiming(ctx, clock)
	if err != nil {
		t.Fatalf("NewTiming failed: %v", err)
	}
	clock.Advance(100 * time.Millisecond)
	_ = timing.Update(ctx)
	before := timing.Elapsed()

	clock.Advance(-50 * time.Millisecond)
	if err := timing.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if timing.Elapsed() < before {
		t.Errorf("elapsed decreased from %v to %v", before, timing.Elapsed())
	}
	if timing.Delta() != 0 {
		t.Errorf("delta = %v, want 0", timing.Delta())
	}

	clock.Advance(60 * time.Millisecond)
	_ = timing.Update(ctx)
	if math.Abs(float64(timing.Delta()-10)) > 0.01 {
		t.Errorf("delta after recovery = %v, want 10", timing.Delta())
	}
}

func TestTimingRealClock(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()

	timing, err := NewTiming(ctx, nil)
	if err != nil {
		t.Fatalf("NewTiming failed: %v", err)
	}
	_ = timing.Update(ctx)
	time.Sleep(5 * time.Millisecond)
	if err := timing.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if timing.Delta() < 4 {
		t.Errorf("delta = %v ms after a 5ms sleep", timing.Delta())
	}
}

func TestTimingProcessRelative(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()

	sinceStart := time.Since(processStart)
	timing, err := NewTiming(ctx, nil)
	if err != nil {
		t.Fatalf("NewTiming failed: %v", err)
	}
	if err := timing.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if timing.Elapsed() < milliseconds(sinceStart) {
		t.Errorf("elapsed = %v ms, want at least %v ms since process start",
			timing.Elapsed(), milliseconds(sinceStart))
	}
}

// epochFakeClock is a fakeClock whose elapsed time starts before the
// timing resource exists.
type epochFakeClock struct {
	*fakeClock
	epoch time.Time
}

func (c epochFakeClock) Epoch() time.Time { return c.epoch }

func TestTimingClockEpoch(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()
	base := newFakeClock()
	clock := epochFakeClock{fakeClock: base, epoch: base.Now().Add(-time.Second)}

	timing, err := NewTiming(ctx, clock)
	if err != nil {
		t.Fatalf("NewTiming failed: %v", err)
	}
	base.Advance(16 * time.Millisecond)
	if err := timing.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if math.Abs(float64(timing.Elapsed()-1016)) > 0.01 {
		t.Errorf("elapsed = %v ms, want 1016", timing.Elapsed())
	}
	if math.Abs(float64(timing.Delta()-16)) > 0.01 {
		t.Errorf("delta = %v ms, want 16", timing.Delta())
	}
}

func TestCameraWritesViewMatrix(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()

	c, err := NewCamera(ctx)
	if err != nil {
		t.Fatalf("NewCamera failed: %v", err)
	}
	defer c.Destroy(ctx)
	buf := directBuffer(t, c.Binding())

	initial, _ := ctx.BufferData(buf)
	if !bytes.Equal(initial, camera.Bytes(camera.Identity().ViewMatrix())) {
		t.Error("camera buffer should start with the identity view")
	}

	cam := camera.New(f32.Vec3{3, 4, 5}, camera.QuatFromAxisAngle(f32.Vec3{0, 1, 0}, 0.5))
	c.SetCamera(cam)
	if c.Camera() != cam {
		t.Error("Camera() should return the camera just set")
	}
	if err := c.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := ctx.BufferData(buf)
	if !bytes.Equal(got, camera.Bytes(cam.ViewMatrix())) {
		t.Error("camera buffer should hold the view matrix after Update")
	}
	if c.Name() != CameraName {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestBindlessCameras(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()

	b, err := NewBindlessCameras(ctx, pool.Config{InitialCapacity: 2, ChunkSize: 3})
	if err != nil {
		t.Fatalf("NewBindlessCameras failed: %v", err)
	}
	if ctx.Counts().Buffers != 2 {
		t.Errorf("buffers = %d, want 2", ctx.Counts().Buffers)
	}

	h, err := b.Add(ctx)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	cam, err := b.CameraMut(h)
	if err != nil {
		t.Fatalf("CameraMut failed: %v", err)
	}
	cam.Position = f32.Vec3{0, 0, 10}

	// The generic refresh writes nothing.
	if err := b.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	info, ok := b.Binding().Indexed()
	if !ok {
		t.Fatal("expected an indexed binding")
	}
	slot := info.Resources[h.Slot].Resource.Buffer.Buffer
	data, _ := ctx.BufferData(slot)
	if !bytes.Equal(data, camera.Bytes(camera.Identity().ViewMatrix())) {
		t.Error("Update must not write bindless cameras")
	}

	if err := b.FlushAll(ctx); err != nil {
		t.Fatalf("FlushAll failed: %v", err)
	}
	data, _ = ctx.BufferData(slot)
	if !bytes.Equal(data, camera.Bytes(cam.ViewMatrix())) {
		t.Error("FlushAll should write the view matrix")
	}
	if info.Resources[h.Slot].Resource.Kind != gpucore.ResourceStorageBuffer {
		t.Error("bindless cameras should be storage buffers")
	}

	got, err := b.Camera(h)
	if err != nil || got.Position != (f32.Vec3{0, 0, 10}) {
		t.Errorf("Camera() = %+v, %v", got, err)
	}
	if !b.Remove(h) {
		t.Error("Remove of a live handle failed")
	}
	if _, err := b.Camera(h); !errors.Is(err, pool.ErrStaleHandle) {
		t.Errorf("Camera after Remove err = %v, want ErrStaleHandle", err)
	}
	if err := b.Flush(ctx, h); !errors.Is(err, pool.ErrStaleHandle) {
		t.Errorf("Flush after Remove err = %v, want ErrStaleHandle", err)
	}
}

func TestBindlessCamerasBindingCoversGrowth(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()

	b, err := NewBindlessCameras(ctx, pool.Config{InitialCapacity: 2, ChunkSize: 3})
	if err != nil {
		t.Fatalf("NewBindlessCameras failed: %v", err)
	}
	for range 3 {
		if _, err := b.Add(ctx); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if b.Cap() != 5 || b.Len() != 3 {
		t.Errorf("Cap() = %d, Len() = %d, want 5 and 3", b.Cap(), b.Len())
	}
	info, _ := b.Binding().Indexed()
	if len(info.Resources) != 5 || info.Binding != 0 {
		t.Errorf("binding = %d resources at %d, want 5 at 0", len(info.Resources), info.Binding)
	}
	for i, r := range info.Resources {
		if r.Slot != uint32(i) {
			t.Errorf("Resources[%d].Slot = %d", i, r.Slot)
		}
	}
	b.Destroy(ctx)
	if ctx.Counts().Buffers != 0 {
		t.Errorf("buffers after Destroy = %d", ctx.Counts().Buffers)
	}
}

func TestRegistryDirect(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()
	clock := newFakeClock()

	reg, err := New(ctx, DirectCatalog(), WithClock(clock))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if len(reg.Metadata()) != 1 || reg.Catalog().Variant() != VariantDirect {
		t.Errorf("metadata = %+v", reg.Metadata())
	}

	b, err := reg.Binding(TimingName)
	if err != nil {
		t.Fatalf("Binding(%q) failed: %v", TimingName, err)
	}
	if b.IsIndexed() {
		t.Error("timing should be a direct binding")
	}
	if _, err := reg.Binding("engine_unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Binding miss err = %v, want ErrNotFound", err)
	}
	if _, ok := reg.Lookup(CameraName); ok {
		t.Error("direct catalog has no camera")
	}
	if _, ok := reg.Camera(); ok {
		t.Error("Camera() should miss on the direct catalog")
	}

	clock.Advance(20 * time.Millisecond)
	if err := reg.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	timing, ok := reg.Timing()
	if !ok {
		t.Fatal("Timing() missing")
	}
	if math.Abs(float64(timing.Delta()-20)) > 0.01 {
		t.Errorf("delta = %v, want 20", timing.Delta())
	}

	reg.Destroy(ctx)
	if ctx.Counts().Buffers != 0 {
		t.Errorf("buffers after Destroy = %d", ctx.Counts().Buffers)
	}
	if len(reg.Resources()) != 0 {
		t.Error("registry should be empty after Destroy")
	}
}

func TestRegistryFull(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()

	reg, err := New(ctx, FullCatalog(), smallPool())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer reg.Destroy(ctx)

	resources := reg.Resources()
	wantNames := []string{TimingName, CameraName, BindlessCameraName}
	if len(resources) != len(wantNames) {
		t.Fatalf("got %d resources", len(resources))
	}
	for i, name := range wantNames {
		if resources[i].Name() != name {
			t.Errorf("resources[%d] = %q, want %q", i, resources[i].Name(), name)
		}
	}
	// timing + camera + 4 pool slots
	if ctx.Counts().Buffers != 6 {
		t.Errorf("buffers = %d, want 6", ctx.Counts().Buffers)
	}

	b, err := reg.Binding(BindlessCameraName)
	if err != nil {
		t.Fatalf("Binding failed: %v", err)
	}
	info, ok := b.Indexed()
	if !ok || len(info.Resources) != 4 {
		t.Errorf("bindless binding = %+v, %v", info, ok)
	}
	if _, ok := b.Direct(); ok {
		t.Error("indexed binding should not report a direct binding")
	}

	cam, ok := reg.Camera()
	if !ok {
		t.Fatal("Camera() missing")
	}
	cam.SetCamera(camera.New(f32.Vec3{1, 2, 3}, camera.IdentityQuat()))
	if err := reg.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	view := readFloats(t, ctx, directBuffer(t, cam.Binding()), 16)
	if view[12] != -1 || view[13] != -2 || view[14] != -3 {
		t.Errorf("view translation = %v", view[12:15])
	}
	if _, ok := reg.BindlessCameras(); !ok {
		t.Error("BindlessCameras() missing")
	}
}

func TestRegistryConstructionFailureCleansUp(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()

	// Timing and camera succeed, the pool fails on its third slot.
	ctx.FailBufferAfter(4)
	_, err := New(ctx, FullCatalog(), smallPool())
	if err == nil {
		t.Fatal("expected construction failure")
	}
	if ctx.Counts().Buffers != 0 {
		t.Errorf("leaked %d buffers", ctx.Counts().Buffers)
	}
}

func TestRegistryErrors(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()

	if _, err := New(ctx, nil); !errors.Is(err, ErrNilCatalog) {
		t.Errorf("nil catalog err = %v", err)
	}

	catalog, err := NewCatalog(VariantDirect, TimingEntry(), Metadata{Name: "engine_lights", Kind: gpucore.BindingTypeStorage})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	if _, err := New(ctx, catalog); !errors.Is(err, ErrUnknownReserved) {
		t.Errorf("unknown name err = %v, want ErrUnknownReserved", err)
	}
	if ctx.Counts().Buffers != 0 {
		t.Errorf("leaked %d buffers", ctx.Counts().Buffers)
	}
}

func TestRegistryUpdateContinuesOnError(t *testing.T) {
	ctx := software.New()
	defer ctx.Close()

	reg, err := New(ctx, FullCatalog(), smallPool())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	timing, _ := reg.Timing()
	// Destroying the timing buffer makes its refresh fail.
	timing.Destroy(ctx)

	cam, _ := reg.Camera()
	cam.SetCamera(camera.New(f32.Vec3{0, 0, 7}, camera.IdentityQuat()))
	err = reg.Update(ctx)
	if !errors.Is(err, gpucore.ErrUnknownBuffer) {
		t.Fatalf("Update err = %v, want ErrUnknownBuffer", err)
	}
	view := readFloats(t, ctx, directBuffer(t, cam.Binding()), 16)
	if view[14] != -7 {
		t.Errorf("camera not refreshed after timing failure: %v", view[12:15])
	}
}
