package visualizer

// noFrame marks an unset frame pointer.
const noFrame = -1

// Drawable is the line-segment object handed to the rendering layer:
// positions are uploaded once at load, colors are patched as the job runs.
type Drawable struct {
	Positions []float32
	Colors    *ColorBuffer
	Rotary    bool
	Laser     bool
}

// VertexCount returns the number of vertices in the drawable.
func (d *Drawable) VertexCount() int {
	return len(d.Positions) / 3
}

// Tracker keeps the color buffer of a loaded toolpath in step with job
// progress. SetFrameIndex follows the lines the controller has received,
// GreyOutLines follows the line the machine is executing. Both repaint
// only the vertices that change and report them as a DirtyRange.
//
// Tracker is not safe for concurrent use. Both update signals must be
// delivered from the goroutine that owns the tracker, in any order.
type Tracker struct {
	opts options

	geom     *Geometry
	colors   *ColorBuffer
	drawable *Drawable
	rotary   bool

	frameIndex    int
	oldFrameIndex int
	plannedV1     int
	plannedCount  int
	state         PlannedState

	// paintedEnd is one past the highest vertex painted since load or the
	// last rewind.
	paintedEnd int

	window *rotaryWindow
}

// NewTracker creates an empty tracker. Call Render to load a toolpath.
func NewTracker(opts ...Option) *Tracker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	t := &Tracker{
		opts:   o,
		window: newRotaryWindow(o.windowSize),
	}
	t.resetProgress()
	return t
}

// Render loads a toolpath. The geometry's Colors become the live color
// buffer; saved is the pre-run snapshot restored on rewind (nil snapshots
// geom.Colors). Rotary mode is taken from the geometry unless forced with
// WithRotary. Any previously loaded toolpath is replaced.
func (t *Tracker) Render(geom *Geometry, saved []float32) error {
	if err := geom.validate(); err != nil {
		return err
	}
	colors, err := NewColorBuffer(geom.Colors, saved)
	if err != nil {
		return err
	}

	t.release()
	t.geom = geom
	t.colors = colors
	t.rotary = geom.IsRotary
	if t.opts.rotary != nil {
		t.rotary = *t.opts.rotary
	}
	t.drawable = &Drawable{
		Positions: geom.Vertices,
		Colors:    colors,
		Rotary:    t.rotary,
		Laser:     geom.IsLaser,
	}
	t.resetProgress()

	Logger().Info("toolpath loaded",
		"vertices", geom.VertexCount(),
		"lines", len(geom.Frames),
		"rotary", t.rotary,
		"laser", geom.IsLaser)
	return nil
}

// Unload releases the loaded toolpath and resets all progress state.
// It is safe to call when nothing is loaded.
func (t *Tracker) Unload() {
	if t.geom != nil {
		Logger().Info("toolpath unloaded", "lines", len(t.geom.Frames))
	}
	t.release()
	t.resetProgress()
}

func (t *Tracker) release() {
	t.geom = nil
	t.colors = nil
	t.drawable = nil
	t.rotary = false
}

// resetProgress returns every per-job field to its initial value.
func (t *Tracker) resetProgress() {
	t.frameIndex = 0
	t.paintedEnd = 0
	t.resetTransient()
}

// resetTransient clears the state a rewind discards; frameIndex is kept.
func (t *Tracker) resetTransient() {
	t.oldFrameIndex = noFrame
	t.plannedV1 = noFrame
	t.plannedCount = 0
	t.state = PlannedStart
	t.window.reset()
}

// Loaded reports whether a toolpath is loaded.
func (t *Tracker) Loaded() bool {
	return t.geom != nil
}

// Rotary reports whether the loaded toolpath is tracked in rotary mode.
func (t *Tracker) Rotary() bool {
	return t.rotary
}

// Drawable returns the object the rendering layer draws, or nil.
func (t *Tracker) Drawable() *Drawable {
	return t.drawable
}

// Colors returns the live color buffer, or nil when nothing is loaded.
func (t *Tracker) Colors() *ColorBuffer {
	return t.colors
}

// FrameIndex returns the received-lines cursor.
func (t *Tracker) FrameIndex() int {
	return t.frameIndex
}

// State returns a copy of the progress bookkeeping.
func (t *Tracker) State() ProgressState {
	return ProgressState{
		FrameIndex:       t.frameIndex,
		OldFrameIndex:    t.oldFrameIndex,
		PlannedV1:        t.plannedV1,
		PlannedCount:     t.plannedCount,
		Planned:          t.state,
		FrameDifferences: t.window.diffs.values(),
		OldV1s:           t.window.oldV1s.values(),
		Countdown:        t.window.countdown,
	}
}

// frames returns the loaded frame index, nil when unloaded.
func (t *Tracker) frames() []int {
	if t.geom == nil {
		return nil
	}
	return t.geom.Frames
}

func (t *Tracker) clampLine(i int) int {
	return min(max(i, 0), len(t.geom.Frames)-1)
}

// CurrentLocation returns the toolpath point where the received-lines
// cursor sits. Callers use it to derive a position when the machine does
// not report one, e.g. in check mode.
func (t *Tracker) CurrentLocation() (Vec3, bool) {
	frames := t.frames()
	if len(frames) == 0 || t.geom.VertexCount() == 0 {
		return Vec3{}, false
	}
	v := min(frames[t.frameIndex], t.geom.VertexCount()-1)
	return t.geom.Vertex(v)
}

// SetFrameIndex moves the received-lines cursor to line and returns the
// color range that changed. Out-of-range lines are clamped.
//
// Moving forward caches the newly received range as the planned highlight;
// GreyOutLines commits it together with the trail so the buffer is written
// once per update. Rotary jobs paint immediately from a rolling window.
// Moving backward restores the snapshot colors of everything past the new
// cursor.
func (t *Tracker) SetFrameIndex(line int) DirtyRange {
	frames := t.frames()
	if len(frames) == 0 {
		return DirtyRange{}
	}
	line = t.clampLine(line)

	v1 := frames[t.frameIndex]
	v2 := frames[line]

	var dirty DirtyRange
	switch {
	case v1 < v2 && t.rotary:
		dirty = t.advanceRotary(v1, v2)
	case v1 < v2:
		t.cachePlanned(v1, v2)
	case v2 < v1:
		dirty = t.rewind(v2, v1)
	}

	t.frameIndex = line
	return dirty
}

// cachePlanned remembers [v1, v2) as the highlight to commit on the next
// trail update. The range is anchored at the previous cursor's vertex, so
// the bridge painted by GreyOutLines ends exactly where it starts. Nothing is cached while the cursor is still at the start of
// the path: the first trail update highlights everything up to the cursor.
func (t *Tracker) cachePlanned(v1, v2 int) {
	if v1 == 0 {
		return
	}
	t.plannedV1 = v1
	t.plannedCount = v2 - v1
}

func (t *Tracker) rewind(v2, v1 int) DirtyRange {
	t.resetTransient()
	end := max(v1, t.paintedEnd)
	dirty := t.colors.Restore(v2, end)
	t.paintedEnd = min(t.paintedEnd, v2)

	Logger().Debug("progress rewound", "from", v1, "to", v2, "dirty", dirty)
	return dirty
}

// GreyOutLines paints the trail behind the line the machine is executing
// and commits the pending highlight ahead of it. It returns the color range
// that changed. Rotary jobs paint their trail from SetFrameIndex and ignore
// this call.
func (t *Tracker) GreyOutLines(currentLine int) DirtyRange {
	frames := t.frames()
	if len(frames) == 0 || t.rotary {
		return DirtyRange{}
	}
	currentLine = t.clampLine(currentLine)

	v1Frame := max(currentLine-2, 0)
	v2Frame := max(currentLine-1, 0)
	// Lines skipped since the previous call are greyed too.
	if t.oldFrameIndex != noFrame && t.oldFrameIndex < v1Frame {
		v1Frame = t.oldFrameIndex
	}
	v1 := frames[v1Frame]
	v2 := frames[v2Frame]

	var dirty DirtyRange
	if v1 < v2 {
		dirty = t.paintTrail(v1, v2)
	}

	t.oldFrameIndex = v2Frame
	return dirty
}

func (t *Tracker) paintTrail(v1, v2 int) DirtyRange {
	frames := t.geom.Frames
	total := t.geom.VertexCount()
	highlight := t.opts.palette.highlightColor()
	run := span{count: v2 - v1, color: t.opts.palette.cutColor(t.geom.IsLaser)}

	bridge, planned := t.pendingHighlight(v2)
	overflowing := run.count+bridge+planned > total-v1
	atEnd := t.frameIndex == len(frames)-1

	switch {
	case (overflowing || atEnd) && t.state != PlannedDone:
		dirty := t.paint(v1, run, span{count: total - v2, color: highlight})
		t.setState(PlannedDone)
		return dirty
	case t.state == PlannedStart:
		dirty := t.paint(v1, run, span{count: frames[t.frameIndex] - v2, color: highlight})
		t.setState(PlannedRunning)
		return dirty
	case t.state == PlannedDone:
		return t.paint(v1, run)
	default:
		return t.paint(v1, run,
			span{count: bridge, color: highlight},
			span{count: planned, color: highlight})
	}
}

// pendingHighlight splits the highlight that still has to follow the trail
// ending at v2 into the bridge up to the cached planned range and the part
// of the planned range past v2.
func (t *Tracker) pendingHighlight(v2 int) (bridge, planned int) {
	if t.plannedV1 == noFrame {
		return 0, 0
	}
	start, end := t.plannedV1, t.plannedV1+t.plannedCount
	if end <= v2 {
		return 0, 0
	}
	start = max(start, v2)
	return start - v2, end - start
}

func (t *Tracker) setState(s PlannedState) {
	if s == t.state {
		return
	}
	Logger().Debug("planned state", "from", t.state, "to", s, "frame", t.frameIndex)
	t.state = s
}

// paint writes spans from vertex start and records the painted extent.
func (t *Tracker) paint(start int, spans ...span) DirtyRange {
	end := start
	for _, s := range spans {
		end += max(s.count, 0)
	}
	t.paintedEnd = max(t.paintedEnd, min(end, t.colors.Len()))
	return t.colors.paint(start, spans...)
}
