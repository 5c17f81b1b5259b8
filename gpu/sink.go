//go:build !nogpu

// Package gpu uploads tracked toolpaths into wgpu vertex buffers.
//
// A HALSink shares the device of an existing window or canvas through a
// gpucontext.DeviceProvider. The positions are written once per load; after
// that only the changed color range of each progress update is copied.
//
//	sink, err := gpu.NewHALSink(provider)
//	if err != nil { ... }
//	s := session.New(sink)
package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	visualizer "github.com/Sienci-Labs/gsender-sub000"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrNoHAL is returned when a provider does not expose HAL types.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL types")

	// ErrNotLoaded is returned by Upload before Load.
	ErrNotLoaded = errors.New("gpu: no drawable loaded")

	// ErrOutOfRange is returned for uploads past the color buffer.
	ErrOutOfRange = errors.New("gpu: upload out of range")
)

const bytesPerFloat = 4

// minBufferSize keeps empty toolpaths from creating zero-sized buffers.
const minBufferSize = 4

// bufferDevice is the part of hal.Device the sink needs.
type bufferDevice interface {
	CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error)
	DestroyBuffer(buffer hal.Buffer)
}

type writeFunc func(buf hal.Buffer, offset uint64, data []byte)

// HALSink implements visualizer.Sink over a HAL device and queue.
type HALSink struct {
	mu     sync.Mutex
	device bufferDevice
	write  writeFunc

	positions hal.Buffer
	colors    hal.Buffer
	vertices  int
	length    int // color components
	scratch   []byte
}

var _ visualizer.Sink = (*HALSink)(nil)

// NewHALSink creates a sink on the device of provider. The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func NewHALSink(provider gpucontext.DeviceProvider) (*HALSink, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return newHALSink(device, func(buf hal.Buffer, offset uint64, data []byte) {
		queue.WriteBuffer(buf, offset, data)
	}), nil
}

func newHALSink(device bufferDevice, write writeFunc) *HALSink {
	return &HALSink{device: device, write: write}
}

// Load creates the vertex buffers for d and writes its positions and
// colors. Buffers of a previous load are destroyed first.
func (s *HALSink) Load(d *visualizer.Drawable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroy()
	colors := d.Colors.Data()

	positions, err := s.createBuffer("toolpath_positions", len(d.Positions))
	if err != nil {
		return fmt.Errorf("gpu: create position buffer: %w", err)
	}
	colorBuf, err := s.createBuffer("toolpath_colors", len(colors))
	if err != nil {
		s.device.DestroyBuffer(positions)
		return fmt.Errorf("gpu: create color buffer: %w", err)
	}

	s.positions, s.colors = positions, colorBuf
	s.vertices = d.VertexCount()
	s.length = len(colors)
	s.writeFloats(s.positions, 0, d.Positions)
	s.writeFloats(s.colors, 0, colors)

	visualizer.Logger().Debug("gpu buffers loaded",
		"vertices", s.vertices,
		"bytes", (len(d.Positions)+len(colors))*bytesPerFloat)
	return nil
}

func (s *HALSink) createBuffer(label string, floats int) (hal.Buffer, error) {
	size := max(uint64(floats)*bytesPerFloat, minBufferSize)
	return s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
}

// Upload writes colors at the byte offset of r in the color buffer.
func (s *HALSink) Upload(r visualizer.DirtyRange, colors []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.colors == nil {
		return ErrNotLoaded
	}
	if r.Offset < 0 || r.End() > s.length || len(colors) != r.Count {
		return fmt.Errorf("%w: %v of %d components", ErrOutOfRange, r, s.length)
	}
	s.writeFloats(s.colors, uint64(r.Offset)*bytesPerFloat, colors)
	return nil
}

func (s *HALSink) writeFloats(buf hal.Buffer, offset uint64, data []float32) {
	if len(data) == 0 {
		return
	}
	n := len(data) * bytesPerFloat
	if cap(s.scratch) < n {
		s.scratch = make([]byte, n)
	}
	b := s.scratch[:n]
	for i, f := range data {
		binary.LittleEndian.PutUint32(b[i*bytesPerFloat:], math.Float32bits(f))
	}
	s.write(buf, offset, b)
}

// VertexCount returns the number of vertices in the loaded buffers.
func (s *HALSink) VertexCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vertices
}

// Buffers returns the position and color buffers for binding, or nils.
func (s *HALSink) Buffers() (positions, colors hal.Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions, s.colors
}

// Release destroys the vertex buffers.
func (s *HALSink) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroy()
}

func (s *HALSink) destroy() {
	if s.positions != nil {
		s.device.DestroyBuffer(s.positions)
		s.positions = nil
	}
	if s.colors != nil {
		s.device.DestroyBuffer(s.colors)
		s.colors = nil
	}
	s.vertices, s.length = 0, 0
}
