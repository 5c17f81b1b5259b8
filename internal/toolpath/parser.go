// Package toolpath turns G-code into the vertex, frame and color buffers the
// visualizer tracks.
//
// Every motion segment becomes a pair of vertices (line-segment topology).
// Frames has one entry per input line plus a final entry: Frames[i] is the
// number of vertices emitted before line i, so after the controller has
// received n lines, Frames[n] is the vertex where the unreceived part of
// the path starts.
package toolpath

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	visualizer "github.com/Sienci-Labs/gsender-sub000"
)

const mmPerInch = 25.4

type plane uint8

const (
	planeXY plane = iota
	planeXZ
	planeYZ
)

type motion int8

const (
	motionRapid motion = iota
	motionLinear
	motionCW
	motionCCW
)

// word is one letter/value pair of a G-code line.
type word struct {
	letter byte
	value  float64
}

// modal is the machine state carried from line to line.
type modal struct {
	motion   motion
	plane    plane
	scale    float64 // mm per program unit
	absolute bool
	pos      point
	speed    float64
	spindle  bool
}

// ctxCheckLines is how often ParseContext polls for cancellation.
const ctxCheckLines = 4096

// Parse reads a G-code program and builds its toolpath geometry.
func Parse(r io.Reader, opts ...Option) (*visualizer.Geometry, error) {
	return ParseContext(context.Background(), r, opts...)
}

// ParseContext is Parse with cancellation between lines.
func ParseContext(ctx context.Context, r io.Reader, opts ...Option) (*visualizer.Geometry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &parser{
		opts: o,
		state: modal{
			motion:   motionRapid,
			scale:    1,
			absolute: true,
		},
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		if line%ctxCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := p.line(line, sc.Text()); err != nil {
			return nil, &LineError{Line: line, Err: err}
		}
		line++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("toolpath: read: %w", err)
	}
	p.frames = append(p.frames, p.b.vertexCount())

	g := p.geometry()
	visualizer.Logger().Debug("toolpath parsed",
		"lines", line,
		"vertices", g.VertexCount(),
		"rotary", g.IsRotary,
		"laser", g.IsLaser)
	return g, nil
}

// ParseString is Parse over a string.
func ParseString(s string, opts ...Option) (*visualizer.Geometry, error) {
	return Parse(strings.NewReader(s), opts...)
}

type parser struct {
	opts  options
	state modal
	b     builder

	frames   []int
	speeds   []float32
	changes  []int
	rotary   bool
	maxSpeed float64

	// dynamicPower is set by M4, which only laser controllers use.
	dynamicPower bool
}

func (p *parser) line(n int, text string) error {
	p.frames = append(p.frames, p.b.vertexCount())

	words, err := tokenize(text)
	if err != nil {
		return err
	}
	if err := p.execute(words); err != nil {
		return err
	}

	s := float32(p.state.speed)
	if n > 0 && s != p.speeds[n-1] {
		p.changes = append(p.changes, n)
	}
	p.speeds = append(p.speeds, s)
	return nil
}

// execute applies one line. Mode words take effect before the motion on
// the same line.
func (p *parser) execute(words []word) error {
	st := &p.state
	var target [4]*float64
	var offset [3]float64
	var radius *float64
	hasOffset := false
	// G10, G28, G30 and G92 take axis words that are not a move.
	axesConsumed := false

	for i := range words {
		w := &words[i]
		switch w.letter {
		case 'G':
			switch w.value {
			case 0:
				st.motion = motionRapid
			case 1:
				st.motion = motionLinear
			case 2:
				st.motion = motionCW
			case 3:
				st.motion = motionCCW
			case 17:
				st.plane = planeXY
			case 18:
				st.plane = planeXZ
			case 19:
				st.plane = planeYZ
			case 20:
				st.scale = mmPerInch
			case 21:
				st.scale = 1
			case 90:
				st.absolute = true
			case 91:
				st.absolute = false
			case 10, 28, 30, 92:
				axesConsumed = true
			}
		case 'M':
			switch w.value {
			case 3:
				st.spindle = true
			case 4:
				st.spindle = true
				p.dynamicPower = true
			case 5:
				st.spindle = false
			}
		case 'S':
			st.speed = w.value
			p.maxSpeed = max(p.maxSpeed, w.value)
		case 'X':
			target[0] = &w.value
		case 'Y':
			target[1] = &w.value
		case 'Z':
			target[2] = &w.value
		case 'A':
			target[3] = &w.value
			p.rotary = true
		case 'I', 'J', 'K':
			offset[w.letter-'I'] = w.value * st.scale
			hasOffset = true
		case 'R':
			radius = &w.value
		}
	}

	if axesConsumed || (target[0] == nil && target[1] == nil && target[2] == nil && target[3] == nil) {
		return nil
	}

	to := st.pos
	axes := [4]*float64{&to.x, &to.y, &to.z, &to.a}
	for i, v := range target {
		if v == nil {
			continue
		}
		// A is in degrees and never scaled by G20.
		val := *v
		if i < 3 {
			val *= st.scale
		}
		if st.absolute {
			*axes[i] = val
		} else {
			*axes[i] += val
		}
	}

	from := st.pos
	st.pos = to

	switch st.motion {
	case motionRapid:
		p.b.line(from, to, kindRapid, p.power(), p.opts.rotaryStep)
	case motionLinear:
		p.b.line(from, to, kindFeed, p.power(), p.opts.rotaryStep)
	case motionCW, motionCCW:
		if radius != nil {
			off, err := radiusOffset(from, to, *radius*st.scale, st.plane, st.motion == motionCW)
			if err != nil {
				return err
			}
			offset = off
		} else if !hasOffset {
			return fmt.Errorf("%w: no centre offset", ErrArc)
		}
		pts, err := arcPoints(from, to, offset, st.plane, st.motion == motionCW, p.opts.arcResolution)
		if err != nil {
			return err
		}
		prev := from
		for _, pt := range pts {
			p.b.line(prev, pt, kindFeed, p.power(), p.opts.rotaryStep)
			prev = pt
		}
	}
	return nil
}

// power is the spindle speed of the next move, 0 with the spindle off.
func (p *parser) power() float32 {
	if !p.state.spindle {
		return 0
	}
	return float32(p.state.speed)
}

func (p *parser) geometry() *visualizer.Geometry {
	speeds := append(p.speeds, float32(p.state.speed))
	laser := p.opts.laser || p.dynamicPower
	return &visualizer.Geometry{
		Vertices:       p.b.verts,
		Frames:         p.frames,
		Colors:         fillColors(&p.b, p.opts, laser, float32(p.maxSpeed)),
		SpindleSpeeds:  speeds,
		SpindleChanges: p.changes,
		IsLaser:        laser,
		IsRotary:       p.rotary,
	}
}

// tokenize splits a line into words, dropping comments, block deletes,
// line numbers and program markers.
func tokenize(text string) ([]word, error) {
	var words []word
	s := stripComments(text)
	// $ lines are controller commands, not G-code.
	if t := strings.TrimSpace(s); t != "" && t[0] == '$' {
		return nil, nil
	}

	for i := 0; i < len(s); {
		c := s[i]
		if c == ' ' || c == '\t' || c == '%' || c == '/' {
			i++
			continue
		}
		letter := upper(c)
		i++
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		start := i
		for i < len(s) && isNumberByte(s[i]) {
			i++
		}
		if letter < 'A' || letter > 'Z' {
			return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, c)
		}
		if start == i {
			return nil, fmt.Errorf("%w: %c has no value", ErrSyntax, letter)
		}
		v, err := strconv.ParseFloat(s[start:i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %c%s", ErrSyntax, letter, s[start:i])
		}
		if letter == 'N' || letter == 'O' {
			continue
		}
		words = append(words, word{letter: letter, value: v})
	}
	return words, nil
}

func stripComments(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			return s
		}
		end := strings.IndexByte(s[open:], ')')
		if end < 0 {
			return s[:open]
		}
		s = s[:open] + " " + s[open+end+1:]
	}
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
