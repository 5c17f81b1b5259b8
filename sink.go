package visualizer

// Sink consumes a tracker's output on the rendering side: the drawable once
// per load, then only the color ranges that changed.
//
// Implementations: gpu.HALSink uploads into wgpu vertex buffers,
// preview.Recorder mirrors the colors for offscreen snapshots.
type Sink interface {
	// Load replaces whatever the sink was drawing with d.
	Load(d *Drawable) error

	// Upload copies colors, the components of r, into the sink's buffer.
	Upload(r DirtyRange, colors []float32) error

	// Release drops the sink's copy of the drawable. Safe to call twice.
	Release()
}

// Flush uploads the changed range of d's colors to s. Empty ranges are
// skipped.
func Flush(s Sink, d *Drawable, r DirtyRange) error {
	if s == nil || d == nil || r.Empty() {
		return nil
	}
	return s.Upload(r, d.Colors.Slice(r))
}
