package toolpath

import "math"

// point is a machine position; a is the rotary axis angle in degrees.
type point struct {
	x, y, z, a float64
}

func lerp(p, q point, t float64) point {
	return point{
		x: p.x + (q.x-p.x)*t,
		y: p.y + (q.y-p.y)*t,
		z: p.z + (q.z-p.z)*t,
		a: p.a + (q.a-p.a)*t,
	}
}

// world returns the drawn position of p. Y and Z are rotated about the X
// axis by the A angle so rotary jobs wrap around the stock.
func (p point) world() (x, y, z float32) {
	if p.a == 0 {
		return float32(p.x), float32(p.y), float32(p.z)
	}
	sin, cos := math.Sincos(p.a * math.Pi / 180)
	return float32(p.x), float32(p.y*cos - p.z*sin), float32(p.y*sin + p.z*cos)
}

type segmentKind uint8

const (
	kindRapid segmentKind = iota
	kindFeed
)

// builder accumulates line-segment vertices with the per-vertex data the
// color fill needs.
type builder struct {
	verts []float32
	kinds []segmentKind
	power []float32
}

func (b *builder) vertexCount() int {
	return len(b.kinds)
}

func (b *builder) vertex(p point, kind segmentKind, power float32) {
	x, y, z := p.world()
	b.verts = append(b.verts, x, y, z)
	b.kinds = append(b.kinds, kind)
	b.power = append(b.power, power)
}

// line emits from→to. Moves that turn the A axis are split every
// rotaryStep degrees so the drawn path follows the rotation.
func (b *builder) line(from, to point, kind segmentKind, power float32, rotaryStep float64) {
	steps := 1
	if da := math.Abs(to.a - from.a); da > rotaryStep {
		steps = int(math.Ceil(da / rotaryStep))
	}

	prev := from
	for i := 1; i <= steps; i++ {
		next := to
		if i < steps {
			next = lerp(from, to, float64(i)/float64(steps))
		}
		b.vertex(prev, kind, power)
		b.vertex(next, kind, power)
		prev = next
	}
}
