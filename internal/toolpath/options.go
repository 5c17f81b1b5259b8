package toolpath

import (
	visualizer "github.com/Sienci-Labs/gsender-sub000"
	"github.com/Sienci-Labs/gsender-sub000/internal/parallel"
)

// Defaults for Options.
const (
	DefaultArcResolution = 0.5 // mm per arc segment
	DefaultRotaryStep    = 5.0 // degrees per segment of an A-axis move
)

// Colors are the initial per-vertex colors of a toolpath.
type Colors struct {
	Rapid visualizer.RGBA
	Feed  visualizer.RGBA
	// Laser is the feed color of laser jobs; its alpha is scaled by the
	// spindle power of each move.
	Laser visualizer.RGBA
}

// DefaultColors returns the colors used when none are configured.
func DefaultColors() Colors {
	return Colors{
		Rapid: visualizer.Hex("#3e85c7"),
		Feed:  visualizer.Hex("#e6e6e6"),
		Laser: visualizer.Hex("#ff4d4d"),
	}
}

// Option configures Parse.
type Option func(*options)

type options struct {
	arcResolution float64
	rotaryStep    float64
	colors        Colors
	laser         bool
	workers       int
	pool          *parallel.WorkerPool
}

func defaultOptions() options {
	return options{
		arcResolution: DefaultArcResolution,
		rotaryStep:    DefaultRotaryStep,
		colors:        DefaultColors(),
	}
}

// WithArcResolution sets the chord length arcs are split into, in mm.
// Non-positive values are ignored.
func WithArcResolution(mm float64) Option {
	return func(o *options) {
		if mm > 0 {
			o.arcResolution = mm
		}
	}
}

// WithRotaryStep sets the angle, in degrees, A-axis moves are split into.
// Non-positive values are ignored.
func WithRotaryStep(deg float64) Option {
	return func(o *options) {
		if deg > 0 {
			o.rotaryStep = deg
		}
	}
}

// WithColors sets the initial toolpath colors.
func WithColors(c Colors) Option {
	return func(o *options) {
		o.colors = c
	}
}

// WithLaser marks the job as a laser job even without M4.
func WithLaser(laser bool) Option {
	return func(o *options) {
		o.laser = laser
	}
}

// WithWorkers sets the number of goroutines filling colors of large
// toolpaths. 0 uses GOMAXPROCS. Ignored when WithPool is given.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithPool fills colors on an existing pool instead of a temporary one.
func WithPool(p *parallel.WorkerPool) Option {
	return func(o *options) {
		o.pool = p
	}
}
