package toolpath

import (
	"fmt"
	"math"
)

// axes returns pointers to the two in-plane coordinates and the helical
// coordinate of p for the given plane.
func (p *point) axes(pl plane) (alpha, beta, helix *float64) {
	switch pl {
	case planeXZ:
		return &p.z, &p.x, &p.y
	case planeYZ:
		return &p.y, &p.z, &p.x
	default:
		return &p.x, &p.y, &p.z
	}
}

// planeOffset picks the centre offsets of the plane from I, J, K.
func planeOffset(off [3]float64, pl plane) (float64, float64) {
	switch pl {
	case planeXZ:
		return off[2], off[0]
	case planeYZ:
		return off[1], off[2]
	default:
		return off[0], off[1]
	}
}

// arcPoints interpolates an arc from→to around from+offset into chords of
// about resolution mm, ending exactly on to. A full circle is drawn when
// the endpoints coincide.
func arcPoints(from, to point, offset [3]float64, pl plane, clockwise bool, resolution float64) ([]point, error) {
	oa, ob := planeOffset(offset, pl)
	if oa == 0 && ob == 0 {
		return nil, fmt.Errorf("%w: zero centre offset", ErrArc)
	}

	fa, fb, fh := from.axes(pl)
	ta, tb, th := to.axes(pl)

	// radius vector from the centre to the current position
	rp, rq := -oa, -ob
	ca, cb := *fa-rp, *fb-rq
	rta, rtb := *ta-ca, *tb-cb

	travel := math.Atan2(rp*rtb-rq*rta, rp*rta+rq*rtb)
	if travel < 0 {
		travel += 2 * math.Pi
	}
	if clockwise {
		travel -= 2 * math.Pi
	}
	if travel == 0 && *fa == *ta && *fb == *tb {
		travel = 2 * math.Pi
	}

	linear := *th - *fh
	radius := math.Hypot(rp, rq)
	flat := radius * travel
	length := math.Abs(flat)
	if linear != 0 {
		length = math.Hypot(flat, linear)
	}
	segments := max(1, int(math.Floor(length/resolution)))

	pts := make([]point, 0, segments)
	for i := 1; i < segments; i++ {
		t := float64(i) / float64(segments)
		theta := travel * t
		sin, cos := math.Sincos(theta)

		pt := lerp(from, to, t)
		a, b, h := pt.axes(pl)
		*a = ca + rp*cos - rq*sin
		*b = cb + rp*sin + rq*cos
		*h = *fh + linear*t
		pts = append(pts, pt)
	}
	return append(pts, to), nil
}

// radiusOffset converts an R-form arc into a centre offset. A negative
// radius selects the arc longer than a half circle.
func radiusOffset(from, to point, r float64, pl plane, clockwise bool) ([3]float64, error) {
	fa, fb, _ := from.axes(pl)
	ta, tb, _ := to.axes(pl)
	x, y := *ta-*fa, *tb-*fb

	d := math.Hypot(x, y)
	if d == 0 || r == 0 {
		return [3]float64{}, fmt.Errorf("%w: radius arc needs distinct endpoints", ErrArc)
	}
	disc := 4*r*r - x*x - y*y
	if disc < 0 {
		// tolerate rounding in programs that give the radius of a half circle
		if disc < -1e-6*4*r*r {
			return [3]float64{}, fmt.Errorf("%w: radius %g too small", ErrArc, r)
		}
		disc = 0
	}

	h := -math.Sqrt(disc) / d
	if !clockwise {
		h = -h
	}
	if r < 0 {
		h = -h
	}
	oa := 0.5 * (x - y*h)
	ob := 0.5 * (y + x*h)

	var off [3]float64
	switch pl {
	case planeXZ:
		off[2], off[0] = oa, ob
	case planeYZ:
		off[1], off[2] = oa, ob
	default:
		off[0], off[1] = oa, ob
	}
	return off, nil
}
