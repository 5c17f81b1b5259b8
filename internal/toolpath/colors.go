package toolpath

import (
	visualizer "github.com/Sienci-Labs/gsender-sub000"
	"github.com/Sienci-Labs/gsender-sub000/internal/parallel"
)

// minLaserAlpha keeps zero-power laser moves faintly visible.
const minLaserAlpha = 0.05

// fillColors builds the initial color buffer. Large buffers are filled in
// chunks on a worker pool.
func fillColors(b *builder, o options, laser bool, maxPower float32) []float32 {
	n := b.vertexCount()
	colors := make([]float32, n*visualizer.ComponentsPerVertex)
	if n == 0 {
		return colors
	}

	fill := func(lo, hi int) {
		for v := lo; v < hi; v++ {
			c := vertexColor(o.colors, b.kinds[v], laser, b.power[v], maxPower)
			i := v * visualizer.ComponentsPerVertex
			colors[i], colors[i+1], colors[i+2], colors[i+3] = c.R, c.G, c.B, c.A
		}
	}

	if n < 2*parallel.MinChunk {
		fill(0, n)
		return colors
	}
	pool := o.pool
	if pool == nil {
		pool = parallel.NewWorkerPool(o.workers)
		defer pool.Close()
	}
	pool.ForChunks(n, fill)
	return colors
}

func vertexColor(c Colors, kind segmentKind, laser bool, power, maxPower float32) visualizer.RGBA {
	switch {
	case kind == kindRapid:
		return c.Rapid
	case !laser:
		return c.Feed
	case maxPower <= 0:
		return c.Laser.WithAlpha(minLaserAlpha)
	default:
		return c.Laser.WithAlpha(max(minLaserAlpha, min(power/maxPower, 1)))
	}
}
