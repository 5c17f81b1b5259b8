package visualizer

// DefaultWindowSize is the number of recent steps the rotary trail keeps.
const DefaultWindowSize = 16

// Option configures a Tracker during creation.
//
// Example:
//
//	tr := visualizer.NewTracker(
//	    visualizer.WithPalette(myPalette),
//	    visualizer.WithWindowSize(24),
//	)
type Option func(*options)

type options struct {
	palette    Palette
	windowSize int
	rotary     *bool
}

func defaultOptions() options {
	return options{
		palette:    DefaultPalette(),
		windowSize: DefaultWindowSize,
	}
}

// WithPalette sets the cut and highlight colors.
func WithPalette(p Palette) Option {
	return func(o *options) {
		o.palette = p
	}
}

// WithWindowSize sets the rotary rolling-window capacity, which is also
// the countdown before the trail starts greying. Values below 2 are raised
// to 2: the oldest and newest samples must be distinct slots.
func WithWindowSize(n int) Option {
	return func(o *options) {
		o.windowSize = max(n, 2)
	}
}

// WithRotary forces rotary or linear tracking regardless of what the
// loaded geometry reports.
func WithRotary(rotary bool) Option {
	return func(o *options) {
		o.rotary = &rotary
	}
}
