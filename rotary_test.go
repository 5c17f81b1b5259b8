package visualizer

import (
	"slices"
	"testing"
)

// evenFrames returns lines frames two vertices apart.
func evenFrames(lines int) []int {
	frames := make([]int, lines)
	for i := range frames {
		frames[i] = i * 2
	}
	return frames
}

func TestRotaryWindowScenario(t *testing.T) {
	tr := loadTracker(t, testGeometry(evenFrames(11), 20), WithRotary(true), WithWindowSize(4))

	steps := []struct {
		line      int
		want      DirtyRange
		countdown int
	}{
		{1, vertexRange(0, 2), 3},
		{2, vertexRange(2, 4), 2},
		{3, vertexRange(4, 6), 1},
		// warm: the oldest step greys, the new step is highlighted
		{4, vertexRange(0, 8), 0},
		{5, vertexRange(2, 10), 0},
		// jump: interior steps are already highlighted
		{8, vertexRange(4, 16), 0},
	}
	for _, s := range steps {
		if got := tr.SetFrameIndex(s.line); got != s.want {
			t.Errorf("SetFrameIndex(%d) = %v, want %v", s.line, got, s.want)
		}
		if c := tr.State().Countdown; c != s.countdown {
			t.Errorf("after line %d countdown = %d, want %d", s.line, c, s.countdown)
		}
	}

	expectColors(t, tr, 0, 6, testCut)
	expectColors(t, tr, 6, 16, testHighlight)
	expectOriginal(t, tr, 16, 20)

	st := tr.State()
	if !slices.Equal(st.FrameDifferences, []int{2, 2, 2, 6}) {
		t.Errorf("FrameDifferences = %v", st.FrameDifferences)
	}
	if !slices.Equal(st.OldV1s, []int{4, 6, 8, 10}) {
		t.Errorf("OldV1s = %v", st.OldV1s)
	}

	if got, want := tr.SetFrameIndex(2), vertexRange(4, 16); got != want {
		t.Errorf("rewind SetFrameIndex(2) = %v, want %v", got, want)
	}
	expectColors(t, tr, 0, 4, testCut)
	expectOriginal(t, tr, 4, 20)

	st = tr.State()
	if st.Countdown != 4 || st.FrameIndex != 2 {
		t.Errorf("after rewind state = %+v", st)
	}
	if !slices.Equal(st.FrameDifferences, []int{-1, -1, -1, -1}) || !slices.Equal(st.OldV1s, []int{-1, -1, -1, -1}) {
		t.Errorf("rings not reset: %v %v", st.FrameDifferences, st.OldV1s)
	}
}

func TestRotaryDefaultCountdown(t *testing.T) {
	tr := loadTracker(t, testGeometry(evenFrames(41), 80), WithRotary(true))

	for line := 1; line <= 20; line++ {
		tr.SetFrameIndex(line)
		want := max(DefaultWindowSize-line, 0)
		if got := tr.State().Countdown; got != want {
			t.Fatalf("line %d countdown = %d, want %d", line, got, want)
		}
	}

	tr.Unload()
	if got := tr.State().Countdown; got != DefaultWindowSize {
		t.Errorf("countdown after Unload = %d, want %d", got, DefaultWindowSize)
	}
}

func TestRotaryIgnoresGreyOutLines(t *testing.T) {
	tr := loadTracker(t, testGeometry(evenFrames(11), 20), WithRotary(true))
	tr.SetFrameIndex(5)
	before := tr.State()

	if got := tr.GreyOutLines(4); !got.Empty() {
		t.Errorf("GreyOutLines() = %v, want empty", got)
	}
	if after := tr.State(); after.OldFrameIndex != before.OldFrameIndex || after.Planned != before.Planned {
		t.Errorf("GreyOutLines changed rotary state: %+v -> %+v", before, after)
	}
}

func TestRotaryLaserCutIsOpaque(t *testing.T) {
	g := testGeometry(evenFrames(11), 20)
	g.IsLaser = true
	tr := loadTracker(t, g, WithRotary(true), WithWindowSize(2))

	tr.SetFrameIndex(1)
	tr.SetFrameIndex(2)

	got := tr.Colors().At(0)
	if got != testPalette.Cut.WithAlpha(1) {
		t.Errorf("laser cut color = %v, want opaque %v", got, testPalette.Cut)
	}
}

func TestRotaryModeSelection(t *testing.T) {
	tests := []struct {
		name     string
		isRotary bool
		opts     []Option
		want     bool
	}{
		{"from geometry", true, nil, true},
		{"plain geometry", false, nil, false},
		{"forced on", false, []Option{WithRotary(true)}, true},
		{"forced off", true, []Option{WithRotary(false)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGeometry(evenFrames(4), 8)
			g.IsRotary = tt.isRotary
			tr := loadTracker(t, g, tt.opts...)
			if tr.Rotary() != tt.want || tr.Drawable().Rotary != tt.want {
				t.Errorf("Rotary() = %v, want %v", tr.Rotary(), tt.want)
			}

			// Forward steps paint immediately only in rotary mode.
			got := tr.SetFrameIndex(2)
			if got.Empty() == tt.want {
				t.Errorf("SetFrameIndex(2) = %v in rotary=%v", got, tt.want)
			}
		})
	}
}

func TestRotaryDirtyRangeSoundness(t *testing.T) {
	frames := []int{0, 3, 3, 7, 12, 12, 13, 20, 26, 26, 31, 40, 44, 50, 57, 57, 60}
	for _, size := range []int{2, 4, DefaultWindowSize} {
		for _, seed := range []uint64{5, 9} {
			tr := loadTracker(t, testGeometry(frames, 60), WithRotary(true), WithWindowSize(size))
			randomWalk(t, tr, len(frames), seed)
		}
	}
}
