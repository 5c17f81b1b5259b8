package visualizer

// rotaryWindow holds the most recent forward steps of a rotary job. Rotary
// motion is continuous, so instead of greying whole lines behind the running
// line the trail greys the oldest step in the window and keeps the rest
// highlighted.
type rotaryWindow struct {
	size      int
	diffs     *ring[int] // vertex count of each step, v2-v1
	oldV1s    *ring[int] // vertex offset each step started at
	countdown int
}

func newRotaryWindow(size int) *rotaryWindow {
	return &rotaryWindow{
		size:      size,
		diffs:     newRing(size, noFrame),
		oldV1s:    newRing(size, noFrame),
		countdown: size,
	}
}

func (w *rotaryWindow) reset() {
	w.diffs.reset(noFrame)
	w.oldV1s.reset(noFrame)
	w.countdown = w.size
}

// step records a forward move from vertex v1 to v2.
func (w *rotaryWindow) step(v1, v2 int) {
	w.countdown = max(w.countdown-1, 0)
	w.diffs.push(v2 - v1)
	w.oldV1s.push(v1)
}

// warm reports whether the window holds a full history of real steps.
func (w *rotaryWindow) warm() bool {
	return w.countdown == 0
}

// interior returns the vertex count of every step between the oldest and
// the newest.
func (w *rotaryWindow) interior() int {
	n := 0
	for i := 1; i < w.diffs.len()-1; i++ {
		n += w.diffs.at(i)
	}
	return n
}

// advanceRotary paints a forward rotary step immediately. Until the window
// is warm only the new step is highlighted. Afterwards one patch starting at
// the oldest step greys that step, keeps the interior highlighted and
// highlights the new step, so the grey boundary moves one step at a time.
func (t *Tracker) advanceRotary(v1, v2 int) DirtyRange {
	w := t.window
	w.step(v1, v2)

	highlight := t.opts.palette.highlightColor()
	current := span{count: v2 - v1, color: highlight}

	if !w.warm() {
		return t.paint(v1, current)
	}

	offset := w.oldV1s.at(0)
	dirty := t.paint(offset,
		span{count: w.diffs.at(0), color: t.opts.palette.cutColor(t.geom.IsLaser)},
		span{count: w.interior(), color: highlight},
		current)

	Logger().Debug("rotary trail", "offset", offset, "dirty", dirty)
	return dirty
}
