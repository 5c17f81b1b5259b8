//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"testing"

	visualizer "github.com/Sienci-Labs/gsender-sub000"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fakeBuffer is a host-memory hal.Buffer.
type fakeBuffer struct {
	hal.Buffer
	label string
	usage gputypes.BufferUsage
	data  []byte
}

// fakeDevice records buffer lifetimes.
type fakeDevice struct {
	created   []*fakeBuffer
	destroyed []string
	failOn    string
}

func (d *fakeDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if desc.Label == d.failOn {
		return nil, errors.New("out of memory")
	}
	b := &fakeBuffer{label: desc.Label, usage: desc.Usage, data: make([]byte, desc.Size)}
	d.created = append(d.created, b)
	return b, nil
}

func (d *fakeDevice) DestroyBuffer(buffer hal.Buffer) {
	d.destroyed = append(d.destroyed, buffer.(*fakeBuffer).label)
}

func writeFake(buf hal.Buffer, offset uint64, data []byte) {
	copy(buf.(*fakeBuffer).data[offset:], data)
}

func floats(b []byte) []float32 {
	out := make([]float32, len(b)/bytesPerFloat)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*bytesPerFloat:]))
	}
	return out
}

func testDrawable(t *testing.T, vertices int) *visualizer.Drawable {
	t.Helper()
	colors := make([]float32, vertices*visualizer.ComponentsPerVertex)
	for i := range colors {
		colors[i] = float32(i) / 100
	}
	buf, err := visualizer.NewColorBuffer(colors, nil)
	if err != nil {
		t.Fatal(err)
	}
	pos := make([]float32, vertices*3)
	for i := range pos {
		pos[i] = float32(i)
	}
	return &visualizer.Drawable{Positions: pos, Colors: buf}
}

func TestHALSinkLoad(t *testing.T) {
	dev := &fakeDevice{}
	s := newHALSink(dev, writeFake)
	d := testDrawable(t, 6)

	if err := s.Load(d); err != nil {
		t.Fatal(err)
	}
	if s.VertexCount() != 6 {
		t.Errorf("VertexCount() = %d, want 6", s.VertexCount())
	}

	pos, col := s.Buffers()
	if got := floats(pos.(*fakeBuffer).data); !slices.Equal(got, d.Positions) {
		t.Errorf("position buffer = %v, want %v", got, d.Positions)
	}
	if got := floats(col.(*fakeBuffer).data); !slices.Equal(got, d.Colors.Data()) {
		t.Errorf("color buffer = %v, want %v", got, d.Colors.Data())
	}
	want := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	for _, b := range dev.created {
		if b.usage != want {
			t.Errorf("%s usage = %v, want %v", b.label, b.usage, want)
		}
	}

	// Reloading destroys the previous buffers.
	if err := s.Load(d); err != nil {
		t.Fatal(err)
	}
	if len(dev.destroyed) != 2 {
		t.Errorf("destroyed %v on reload, want both buffers", dev.destroyed)
	}
}

func TestHALSinkUpload(t *testing.T) {
	s := newHALSink(&fakeDevice{}, writeFake)
	d := testDrawable(t, 4)
	if err := s.Load(d); err != nil {
		t.Fatal(err)
	}

	patch := []float32{9, 9, 9, 9, 8, 8, 8, 8}
	r := visualizer.DirtyRange{Offset: 4, Count: 8}
	if err := s.Upload(r, patch); err != nil {
		t.Fatal(err)
	}

	want := slices.Clone(d.Colors.Data())
	copy(want[4:], patch)
	_, col := s.Buffers()
	if got := floats(col.(*fakeBuffer).data); !slices.Equal(got, want) {
		t.Errorf("color buffer = %v, want %v", got, want)
	}
}

func TestHALSinkUploadErrors(t *testing.T) {
	tests := []struct {
		name    string
		load    bool
		r       visualizer.DirtyRange
		n       int
		wantErr error
	}{
		{"not loaded", false, visualizer.DirtyRange{Count: 4}, 4, ErrNotLoaded},
		{"past end", true, visualizer.DirtyRange{Offset: 12, Count: 8}, 8, ErrOutOfRange},
		{"length mismatch", true, visualizer.DirtyRange{Count: 8}, 4, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newHALSink(&fakeDevice{}, writeFake)
			if tt.load {
				if err := s.Load(testDrawable(t, 4)); err != nil {
					t.Fatal(err)
				}
			}
			if err := s.Upload(tt.r, make([]float32, tt.n)); !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHALSinkLoadFailure(t *testing.T) {
	dev := &fakeDevice{failOn: "toolpath_colors"}
	s := newHALSink(dev, writeFake)

	if err := s.Load(testDrawable(t, 2)); err == nil {
		t.Fatal("Load() succeeded with a failing device")
	}
	if !slices.Equal(dev.destroyed, []string{"toolpath_positions"}) {
		t.Errorf("destroyed %v, want the position buffer", dev.destroyed)
	}
	if pos, col := s.Buffers(); pos != nil || col != nil {
		t.Error("buffers kept after failed load")
	}
}

func TestHALSinkRelease(t *testing.T) {
	dev := &fakeDevice{}
	s := newHALSink(dev, writeFake)
	if err := s.Load(testDrawable(t, 3)); err != nil {
		t.Fatal(err)
	}

	s.Release()
	s.Release()
	if len(dev.destroyed) != 2 {
		t.Errorf("destroyed %v, want 2 buffers once", dev.destroyed)
	}
	if err := s.Upload(visualizer.DirtyRange{Count: 4}, make([]float32, 4)); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Upload() after Release = %v, want ErrNotLoaded", err)
	}
}

func TestHALSinkEmptyDrawable(t *testing.T) {
	dev := &fakeDevice{}
	s := newHALSink(dev, writeFake)
	if err := s.Load(testDrawable(t, 0)); err != nil {
		t.Fatal(err)
	}
	for _, b := range dev.created {
		if len(b.data) != minBufferSize {
			t.Errorf("%s size = %d, want %d", b.label, len(b.data), minBufferSize)
		}
	}
}

// mockProvider implements gpucontext.DeviceProvider without HAL access.
type mockProvider struct{}

func (mockProvider) Device() gpucontext.Device             { return nil }
func (mockProvider) Queue() gpucontext.Queue               { return nil }
func (mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (mockProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

type halDevice struct{ hal.Device }
type halQueue struct{ hal.Queue }

// halMockProvider adds HAL accessors to mockProvider.
type halMockProvider struct {
	mockProvider
	device any
	queue  any
}

func (p halMockProvider) HalDevice() any { return p.device }
func (p halMockProvider) HalQueue() any  { return p.queue }

func TestNewHALSink(t *testing.T) {
	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
		wantErr  error
	}{
		{"no hal", mockProvider{}, ErrNoHAL},
		{"wrong device", halMockProvider{device: "gpu", queue: &halQueue{}}, ErrNoHAL},
		{"wrong queue", halMockProvider{device: &halDevice{}, queue: 42}, ErrNoHAL},
		{"hal", halMockProvider{device: &halDevice{}, queue: &halQueue{}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewHALSink(tt.provider)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewHALSink() error = %v, want %v", err, tt.wantErr)
			}
			if (s != nil) != (tt.wantErr == nil) {
				t.Errorf("NewHALSink() sink = %v with error %v", s, err)
			}
		})
	}
}
