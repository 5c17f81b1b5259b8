package session

import visualizer "github.com/Sienci-Labs/gsender-sub000"

// event is applied on the Run goroutine.
type event interface {
	apply(s *Session)
}

type loadEvent struct {
	geom  *visualizer.Geometry
	saved []float32
	reply chan<- error
}

func (e loadEvent) apply(s *Session) {
	e.reply <- s.load(e.geom, e.saved)
}

type unloadEvent struct{}

func (unloadEvent) apply(s *Session) {
	s.tracker.Unload()
	s.pending = visualizer.DirtyRange{}
	if s.sink != nil {
		s.sink.Release()
	}
}

type receivedEvent struct{ lines int }

func (e receivedEvent) apply(s *Session) {
	s.pending = s.pending.Union(s.tracker.SetFrameIndex(e.lines))
}

type runningEvent struct{ line int }

func (e runningEvent) apply(s *Session) {
	s.pending = s.pending.Union(s.tracker.GreyOutLines(e.line))
}

type progressEvent struct{ received, running int }

func (e progressEvent) apply(s *Session) {
	s.pending = s.pending.
		Union(s.tracker.SetFrameIndex(e.received)).
		Union(s.tracker.GreyOutLines(e.running))
}

type location struct {
	point visualizer.Vec3
	ok    bool
}

type locationEvent struct{ reply chan<- location }

// Queries flush first so the sink has every update applied before the
// caller sees the reply.
func (e locationEvent) apply(s *Session) {
	s.flush()
	p, ok := s.tracker.CurrentLocation()
	e.reply <- location{point: p, ok: ok}
}

type statsEvent struct{ reply chan<- Stats }

func (e statsEvent) apply(s *Session) {
	s.flush()
	e.reply <- s.stats
}

type stateEvent struct{ reply chan<- visualizer.ProgressState }

func (e stateEvent) apply(s *Session) {
	s.flush()
	e.reply <- s.tracker.State()
}
