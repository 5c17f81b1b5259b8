package visualizer

import "fmt"

// Geometry is the output of the toolpath producer for one job. It is
// built once per load and treated as immutable afterwards.
type Geometry struct {
	// Vertices holds xyz triplets of the toolpath polyline.
	Vertices []float32

	// Frames maps a G-code line index to the vertex index where that line's
	// segment begins. Frames[i+1]-Frames[i] is the number of vertices line i
	// contributed. Non-decreasing.
	Frames []int

	// Colors is the initial color buffer, one RGBA tuple per vertex.
	Colors []float32

	// SpindleSpeeds holds the S value active on each frame.
	SpindleSpeeds []float32

	// SpindleChanges lists frame indices where the spindle speed changes.
	SpindleChanges []int

	// IsLaser selects the laser opacity for cut segments.
	IsLaser bool

	// IsRotary is set when the job drives a rotary (A) axis.
	IsRotary bool
}

// VertexCount returns the number of vertices in the toolpath.
func (g *Geometry) VertexCount() int {
	return len(g.Vertices) / 3
}

// Vertex returns the point at vertex index v.
func (g *Geometry) Vertex(v int) (Vec3, bool) {
	if v < 0 || v >= g.VertexCount() {
		return Vec3{}, false
	}
	i := v * 3
	return Vec3{X: g.Vertices[i], Y: g.Vertices[i+1], Z: g.Vertices[i+2]}, true
}

// validate checks the length contracts Render relies on. Frame
// monotonicity is the producer's responsibility and is not checked.
func (g *Geometry) validate() error {
	if g == nil {
		return ErrNilGeometry
	}
	if len(g.Vertices)%3 != 0 {
		return fmt.Errorf("%w: got %d", ErrVertexLength, len(g.Vertices))
	}
	if len(g.Colors) != g.VertexCount()*4 {
		return fmt.Errorf("%w: %d colors for %d vertices", ErrColorLength, len(g.Colors), g.VertexCount())
	}
	if n := len(g.Frames); n > 0 && g.Frames[n-1] > g.VertexCount() {
		return fmt.Errorf("%w: last frame %d, %d vertices", ErrFramesOutOfRange, g.Frames[n-1], g.VertexCount())
	}
	return nil
}

// Vec3 is a point in machine coordinates.
type Vec3 struct {
	X, Y, Z float32
}
