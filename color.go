package visualizer

import (
	"image/color"
)

// RGBA is a vertex color with red, green, blue and alpha components in
// [0, 1]. Components are float32 because they are written straight into
// GPU-facing vertex color buffers.
type RGBA struct {
	R, G, B, A float32
}

// RGBA implements color.Color (non-premultiplied input, premultiplied output).
func (c RGBA) RGBA() (r, g, b, a uint32) {
	return c.Color().RGBA()
}

// Color converts RGBA to a color.NRGBA.
func (c RGBA) Color() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// WithAlpha returns c with its alpha replaced.
func (c RGBA) WithAlpha(a float32) RGBA {
	c.A = a
	return c
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return RGBA{
		R: float32(n.R) / 65535,
		G: float32(n.G) / 65535,
		B: float32(n.B) / 65535,
		A: float32(n.A) / 65535,
	}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with or without '#'.
// Malformed input yields opaque black.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255

	switch len(hex) {
	case 3:
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
	case 8:
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
		parseHex(hex[6:8], &a)
	default:
		return RGBA{A: 1}
	}

	return RGBA{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

func parseHex(s string, val *uint32) {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return
		}
	}
}

func clamp255(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// Palette holds the colors the tracker paints with. It is passed in at
// construction; the tracker never reads theme settings on its own.
type Palette struct {
	// Cut is the tone executed segments fade to.
	Cut RGBA

	// Highlight marks lines the machine has been sent but not yet finished.
	Highlight RGBA

	// OpacityLaser is the alpha of cut segments in laser jobs.
	OpacityLaser float32

	// OpacityNormal is the alpha of cut segments in spindle jobs.
	OpacityNormal float32
}

// DefaultPalette returns the colors used when no palette is configured.
func DefaultPalette() Palette {
	return Palette{
		Cut:           Hex("#5f5f5f"),
		Highlight:     Hex("#ffe14d"),
		OpacityLaser:  1,
		OpacityNormal: 0.3,
	}
}

// cutColor returns the cut color with the opacity for the job type.
func (p Palette) cutColor(laser bool) RGBA {
	if laser {
		return p.Cut.WithAlpha(p.OpacityLaser)
	}
	return p.Cut.WithAlpha(p.OpacityNormal)
}

// highlightColor returns the planned/highlight color, always opaque.
func (p Palette) highlightColor() RGBA {
	return p.Highlight.WithAlpha(1)
}
