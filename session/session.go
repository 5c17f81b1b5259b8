// Package session runs a Tracker on its own goroutine and feeds its color
// updates to a rendering sink.
//
// Controller status arrives from the network or serial goroutines; the
// tracker itself is single-threaded. A Session serialises every update
// through one channel, applies whatever is queued as a batch and uploads
// the union of the changed ranges once per batch.
//
//	s := session.New(sink)
//	go s.Run(ctx)
//	if err := s.Load(ctx, geom, nil); err != nil { ... }
//	s.Progress(ctx, received, running)
package session

import (
	"context"
	"errors"
	"fmt"

	visualizer "github.com/Sienci-Labs/gsender-sub000"
)

// DefaultBufferSize is the event queue length when none is configured.
const DefaultBufferSize = 256

// ErrClosed is returned when the session's Run loop has exited.
var ErrClosed = errors.New("session: closed")

// Option configures a Session.
type Option func(*options)

type options struct {
	bufferSize int
	tracker    []visualizer.Option
}

// WithBufferSize sets the event queue length.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithTrackerOptions passes options to the session's Tracker.
func WithTrackerOptions(opts ...visualizer.Option) Option {
	return func(o *options) {
		o.tracker = append(o.tracker, opts...)
	}
}

// Stats counts what a session has done since it started.
type Stats struct {
	Events  int // applied events
	Batches int // drained batches
	Uploads int // non-empty uploads sent to the sink
	Failed  int // uploads the sink rejected
}

// Session owns one Tracker. All methods except Run are safe for concurrent
// use; Run must be called exactly once.
type Session struct {
	tracker *visualizer.Tracker
	sink    visualizer.Sink
	events  chan event
	done    chan struct{}

	// owned by the Run goroutine
	pending visualizer.DirtyRange
	stats   Stats
}

// New creates a session uploading to sink. A nil sink discards updates.
func New(sink visualizer.Sink, opts ...Option) *Session {
	o := options{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{
		tracker: visualizer.NewTracker(o.tracker...),
		sink:    sink,
		events:  make(chan event, o.bufferSize),
		done:    make(chan struct{}),
	}
}

// Run applies events until ctx is cancelled. On exit the loaded toolpath is
// released from the tracker and the sink. Run returns ctx.Err().
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.release()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.apply(ev)
			s.drain()
			s.flush()
			s.stats.Batches++
		}
	}
}

// drain applies every event already queued without blocking.
func (s *Session) drain() {
	for {
		select {
		case ev := <-s.events:
			s.apply(ev)
		default:
			return
		}
	}
}

func (s *Session) apply(ev event) {
	s.stats.Events++
	ev.apply(s)
}

// flush uploads the accumulated range. Sink failures are logged and the
// session keeps running; the next upload covering the range repairs it.
func (s *Session) flush() {
	r := s.pending
	s.pending = visualizer.DirtyRange{}
	if r.Empty() || s.sink == nil {
		return
	}
	s.stats.Uploads++
	if err := visualizer.Flush(s.sink, s.tracker.Drawable(), r); err != nil {
		s.stats.Failed++
		visualizer.Logger().Warn("color upload failed", "range", r, "err", err)
	}
}

func (s *Session) release() {
	s.tracker.Unload()
	if s.sink != nil {
		s.sink.Release()
	}
}

func (s *Session) send(ctx context.Context, ev event) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

// call sends ev and waits for its reply.
func call[T any](ctx context.Context, s *Session, ev event, reply <-chan T) (T, error) {
	var zero T
	if err := s.send(ctx, ev); err != nil {
		return zero, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.done:
		return zero, ErrClosed
	}
}

// Load replaces the tracked toolpath and hands the new drawable to the
// sink. It returns once the load has been applied.
func (s *Session) Load(ctx context.Context, g *visualizer.Geometry, saved []float32) error {
	reply := make(chan error, 1)
	err, sendErr := call(ctx, s, loadEvent{geom: g, saved: saved, reply: reply}, reply)
	if sendErr != nil {
		return sendErr
	}
	return err
}

// Unload drops the tracked toolpath.
func (s *Session) Unload(ctx context.Context) error {
	return s.send(ctx, unloadEvent{})
}

// ReceivedLines reports that the controller has accepted n lines.
func (s *Session) ReceivedLines(ctx context.Context, n int) error {
	return s.send(ctx, receivedEvent{lines: n})
}

// CurrentLine reports the line the machine is executing.
func (s *Session) CurrentLine(ctx context.Context, line int) error {
	return s.send(ctx, runningEvent{line: line})
}

// Progress reports both counters of one controller status report.
func (s *Session) Progress(ctx context.Context, received, running int) error {
	return s.send(ctx, progressEvent{received: received, running: running})
}

// Location returns the toolpath point at the received-lines cursor, for
// controllers that report no position (check mode). ok is false when no
// toolpath is loaded.
func (s *Session) Location(ctx context.Context) (p visualizer.Vec3, ok bool, err error) {
	reply := make(chan location, 1)
	loc, err := call(ctx, s, locationEvent{reply: reply}, reply)
	return loc.point, loc.ok, err
}

// Stats returns the session counters. It waits for the Run goroutine.
func (s *Session) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	return call(ctx, s, statsEvent{reply: reply}, reply)
}

// State returns the tracker's progress bookkeeping.
func (s *Session) State(ctx context.Context) (visualizer.ProgressState, error) {
	reply := make(chan visualizer.ProgressState, 1)
	return call(ctx, s, stateEvent{reply: reply}, reply)
}

func (s *Session) load(g *visualizer.Geometry, saved []float32) error {
	if err := s.tracker.Render(g, saved); err != nil {
		return err
	}
	s.pending = visualizer.DirtyRange{}
	if s.sink == nil {
		return nil
	}
	if err := s.sink.Load(s.tracker.Drawable()); err != nil {
		s.tracker.Unload()
		return fmt.Errorf("session: sink load: %w", err)
	}
	return nil
}
