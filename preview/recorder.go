// Package preview renders tracked toolpaths offscreen.
//
// A Recorder is a visualizer.Sink that keeps its own copy of the drawable,
// so a snapshot can be taken at any point of a job without touching the
// tracker. Snapshots are a top-down view of the XY plane drawn with gg.
package preview

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	visualizer "github.com/Sienci-Labs/gsender-sub000"
)

var (
	// ErrEmpty is returned when rendering before Load.
	ErrEmpty = errors.New("preview: nothing loaded")

	// ErrOutOfRange is returned for uploads past the mirrored colors.
	ErrOutOfRange = errors.New("preview: upload out of range")
)

// Recorder mirrors a drawable in host memory. It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	positions []float32
	colors    []float32
	loaded    bool
	uploads   int
}

var _ visualizer.Sink = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Load copies the positions and colors of d.
func (r *Recorder) Load(d *visualizer.Drawable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = slices.Clone(d.Positions)
	r.colors = slices.Clone(d.Colors.Data())
	r.loaded = true
	r.uploads = 0
	return nil
}

// Upload applies a changed color range.
func (r *Recorder) Upload(rng visualizer.DirtyRange, colors []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return ErrEmpty
	}
	if rng.Offset < 0 || rng.End() > len(r.colors) || len(colors) != rng.Count {
		return fmt.Errorf("%w: %v of %d components", ErrOutOfRange, rng, len(r.colors))
	}
	copy(r.colors[rng.Offset:], colors)
	r.uploads++
	return nil
}

// Release drops the mirrored drawable.
func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions, r.colors = nil, nil
	r.loaded = false
}

// Colors returns a copy of the mirrored colors, or nil.
func (r *Recorder) Colors() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.colors)
}

// Uploads returns the number of uploads since the last Load.
func (r *Recorder) Uploads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploads
}

// snapshot returns copies taken under the lock so drawing does not block
// the session.
func (r *Recorder) snapshot() (positions, colors []float32, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return nil, nil, false
	}
	return slices.Clone(r.positions), slices.Clone(r.colors), true
}
