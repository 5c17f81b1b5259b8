package visualizer

import "fmt"

// ComponentsPerVertex is the number of float32 values per vertex color.
const ComponentsPerVertex = 4

// DirtyRange is a span of color buffer components, [Offset, Offset+Count),
// that changed and must be re-uploaded. Offset and Count are in float32
// components and always aligned to whole vertices.
type DirtyRange struct {
	Offset int
	Count  int
}

// Empty reports whether the range covers nothing.
func (r DirtyRange) Empty() bool {
	return r.Count <= 0
}

// End returns the component index one past the range.
func (r DirtyRange) End() int {
	return r.Offset + r.Count
}

// Vertices returns the range in vertex indices, [first, last).
func (r DirtyRange) Vertices() (first, last int) {
	return r.Offset / ComponentsPerVertex, r.End() / ComponentsPerVertex
}

// Union returns the smallest range containing both r and o.
func (r DirtyRange) Union(o DirtyRange) DirtyRange {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	start := min(r.Offset, o.Offset)
	end := max(r.End(), o.End())
	return DirtyRange{Offset: start, Count: end - start}
}

func (r DirtyRange) String() string {
	if r.Empty() {
		return "{}"
	}
	return fmt.Sprintf("{offset:%d count:%d}", r.Offset, r.Count)
}

// span is a run of vertices painted with one color.
type span struct {
	count int
	color RGBA
}

// ColorBuffer owns the per-vertex color array of a loaded toolpath plus an
// immutable snapshot of the colors it started with. All writes go through
// ApplyPatch, which reports the vertices that actually changed.
//
// ColorBuffer is not safe for concurrent use. It is owned by one Tracker.
type ColorBuffer struct {
	data    []float32
	saved   []float32
	pending DirtyRange
	scratch []float32
}

// NewColorBuffer creates a buffer holding a copy of colors. saved is the
// pre-run snapshot used by Restore; when nil, colors is snapshotted.
func NewColorBuffer(colors, saved []float32) (*ColorBuffer, error) {
	if len(colors)%ComponentsPerVertex != 0 {
		return nil, fmt.Errorf("%w: %d components", ErrColorLength, len(colors))
	}
	if saved == nil {
		saved = colors
	}
	if len(saved) != len(colors) {
		return nil, fmt.Errorf("%w: snapshot has %d components, buffer %d", ErrColorLength, len(saved), len(colors))
	}
	return &ColorBuffer{
		data:  append([]float32(nil), colors...),
		saved: append([]float32(nil), saved...),
	}, nil
}

// Len returns the number of vertices.
func (b *ColorBuffer) Len() int {
	return len(b.data) / ComponentsPerVertex
}

// Data returns the live color array. Callers must treat it as read-only.
func (b *ColorBuffer) Data() []float32 {
	return b.data
}

// Slice returns the components covered by r.
func (b *ColorBuffer) Slice(r DirtyRange) []float32 {
	if r.Empty() {
		return nil
	}
	return b.data[r.Offset:r.End()]
}

// At returns the color of vertex v.
func (b *ColorBuffer) At(v int) RGBA {
	return colorAt(b.data, v)
}

// SavedAt returns the snapshot color of vertex v.
func (b *ColorBuffer) SavedAt(v int) RGBA {
	return colorAt(b.saved, v)
}

func colorAt(buf []float32, v int) RGBA {
	i := v * ComponentsPerVertex
	return RGBA{R: buf[i], G: buf[i+1], B: buf[i+2], A: buf[i+3]}
}

// ApplyPatch writes values starting at component offset and returns the
// tightest vertex-aligned range that changed. Parts of the patch that fall
// outside the buffer are dropped.
func (b *ColorBuffer) ApplyPatch(offset int, values []float32) DirtyRange {
	if offset < 0 {
		if -offset >= len(values) {
			return DirtyRange{}
		}
		values = values[-offset:]
		offset = 0
	}
	if offset >= len(b.data) {
		return DirtyRange{}
	}
	if rest := len(b.data) - offset; len(values) > rest {
		values = values[:rest]
	}

	first, last := -1, -1
	for i, v := range values {
		j := offset + i
		if b.data[j] == v {
			continue
		}
		b.data[j] = v
		if first < 0 {
			first = j
		}
		last = j
	}
	if first < 0 {
		return DirtyRange{}
	}

	start := first - first%ComponentsPerVertex
	end := last - last%ComponentsPerVertex + ComponentsPerVertex
	r := DirtyRange{Offset: start, Count: end - start}
	b.pending = b.pending.Union(r)
	return r
}

// paint writes consecutive spans starting at vertex start as one patch.
func (b *ColorBuffer) paint(start int, spans ...span) DirtyRange {
	n := 0
	for _, s := range spans {
		if s.count > 0 {
			n += s.count
		}
	}
	if n == 0 {
		return DirtyRange{}
	}

	need := n * ComponentsPerVertex
	if cap(b.scratch) < need {
		b.scratch = make([]float32, need)
	}
	buf := b.scratch[:need]

	i := 0
	for _, s := range spans {
		for k := 0; k < s.count; k++ {
			buf[i] = s.color.R
			buf[i+1] = s.color.G
			buf[i+2] = s.color.B
			buf[i+3] = s.color.A
			i += ComponentsPerVertex
		}
	}
	return b.ApplyPatch(start*ComponentsPerVertex, buf)
}

// Restore copies snapshot colors back over vertices [from, to).
func (b *ColorBuffer) Restore(from, to int) DirtyRange {
	from = max(from, 0)
	to = min(to, b.Len())
	if from >= to {
		return DirtyRange{}
	}
	lo, hi := from*ComponentsPerVertex, to*ComponentsPerVertex
	return b.ApplyPatch(lo, b.saved[lo:hi])
}

// TakeDirty returns the union of every range changed since the last call
// and clears it. Renderers that poll instead of consuming per-call ranges
// use this.
func (b *ColorBuffer) TakeDirty() DirtyRange {
	r := b.pending
	b.pending = DirtyRange{}
	return r
}
