package preview

import (
	"image"
	"image/png"
	"io"
	"math"

	visualizer "github.com/Sienci-Labs/gsender-sub000"
	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options controls a snapshot.
type Options struct {
	Width, Height int
	Background    visualizer.RGBA
	LineWidth     float64
	Margin        float64

	// Label is drawn in the bottom left corner when not empty.
	Label      string
	LabelColor visualizer.RGBA
}

// DefaultOptions returns a 512x512 snapshot on the viewer's dark background.
func DefaultOptions() Options {
	return Options{
		Width:      512,
		Height:     512,
		Background: visualizer.Hex("#111111"),
		LineWidth:  1,
		Margin:     16,
		LabelColor: visualizer.Hex("#e6e6e6"),
	}
}

// ProgressLabel formats line counters with English digit grouping,
// "12,345 / 20,000 lines".
func ProgressLabel(done, total int) string {
	return message.NewPrinter(language.English).Sprintf("%d / %d lines", done, total)
}

// viewport maps toolpath XY to pixels, Y up.
type viewport struct {
	minX, maxY float64
	scale      float64
	offX, offY float64
}

func fit(positions []float32, o Options) viewport {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+2 < len(positions); i += 3 {
		x, y := float64(positions[i]), float64(positions[i+1])
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	if math.IsInf(minX, 1) {
		return viewport{scale: 1}
	}

	w := max(float64(o.Width)-2*o.Margin, 1)
	h := max(float64(o.Height)-2*o.Margin, 1)
	dx, dy := maxX-minX, maxY-minY
	scale := 1.0
	switch {
	case dx > 0 && dy > 0:
		scale = min(w/dx, h/dy)
	case dx > 0:
		scale = w / dx
	case dy > 0:
		scale = h / dy
	}
	return viewport{
		minX:  minX,
		maxY:  maxY,
		scale: scale,
		offX:  o.Margin + (w-dx*scale)/2,
		offY:  o.Margin + (h-dy*scale)/2,
	}
}

func (v viewport) point(positions []float32, vertex int) (x, y float64) {
	i := vertex * 3
	x = v.offX + (float64(positions[i])-v.minX)*v.scale
	y = v.offY + (v.maxY-float64(positions[i+1]))*v.scale
	return x, y
}

// Render draws the mirrored toolpath. Each segment is stroked in the color
// of its first vertex; runs of equal color share one path. Fully
// transparent segments are skipped.
func (r *Recorder) Render(o Options) (*image.RGBA, error) {
	positions, colors, ok := r.snapshot()
	if !ok {
		return nil, ErrEmpty
	}

	dc := gg.NewContext(o.Width, o.Height)
	defer dc.Close()
	dc.ClearWithColor(toGG(o.Background))
	dc.SetLineWidth(o.LineWidth)

	vp := fit(positions, o)
	vertices := min(len(positions)/3, len(colors)/visualizer.ComponentsPerVertex)

	var run visualizer.RGBA
	open := false
	for v := 0; v+1 < vertices; v += 2 {
		c := colorAt(colors, v)
		if c.A <= 0 {
			continue
		}
		if open && c != run {
			if err := dc.Stroke(); err != nil {
				return nil, err
			}
			open = false
		}
		if !open {
			dc.SetRGBA(float64(c.R), float64(c.G), float64(c.B), float64(c.A))
			run, open = c, true
		}
		dc.MoveTo(vp.point(positions, v))
		dc.LineTo(vp.point(positions, v+1))
	}
	if open {
		if err := dc.Stroke(); err != nil {
			return nil, err
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	draw.Draw(img, img.Bounds(), dc.Image(), image.Point{}, draw.Src)
	if o.Label != "" {
		drawLabel(img, o.Label, o.LabelColor)
	}
	return img, nil
}

func colorAt(colors []float32, v int) visualizer.RGBA {
	i := v * visualizer.ComponentsPerVertex
	return visualizer.RGBA{R: colors[i], G: colors[i+1], B: colors[i+2], A: colors[i+3]}
}

func toGG(c visualizer.RGBA) gg.RGBA {
	return gg.RGBA2(float64(c.R), float64(c.G), float64(c.B), float64(c.A))
}

func drawLabel(img *image.RGBA, label string, c visualizer.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c.Color()),
		Face: face,
		Dot:  fixed.P(6, img.Bounds().Dy()-face.Descent-4),
	}
	d.DrawString(label)
}

// Thumbnail scales img to width pixels, keeping the aspect ratio.
func Thumbnail(img image.Image, width int) *image.RGBA {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 {
		return image.NewRGBA(image.Rectangle{})
	}
	height := max(b.Dy()*width/b.Dx(), 1)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
