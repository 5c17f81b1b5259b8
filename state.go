package visualizer

// PlannedState tracks how far the forward highlight has progressed.
// It only moves forward (Start, Running, Done) until a rewind or unload
// resets it.
type PlannedState uint8

const (
	// PlannedStart is the state after load or rewind, before the first
	// trail has been painted.
	PlannedStart PlannedState = iota

	// PlannedRunning means the highlight follows the received lines.
	PlannedRunning

	// PlannedDone means the highlight has been painted to the end of the
	// path and only the trail still moves.
	PlannedDone
)

func (s PlannedState) String() string {
	switch s {
	case PlannedStart:
		return "start"
	case PlannedRunning:
		return "running"
	case PlannedDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressState is a copy of the tracker's progress bookkeeping.
// OldFrameIndex and PlannedV1 are -1 when unset.
type ProgressState struct {
	FrameIndex    int
	OldFrameIndex int
	PlannedV1     int
	PlannedCount  int
	Planned       PlannedState

	// Rotary rolling window, oldest first.
	FrameDifferences []int
	OldV1s           []int
	Countdown        int
}
