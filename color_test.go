package visualizer

import (
	"image/color"
	"testing"
)

var _ color.Color = RGBA{}

func TestHex(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want RGBA
	}{
		{"short", "#f00", RGBA{1, 0, 0, 1}},
		{"short alpha", "f008", RGBA{1, 0, 0, float32(0x88) / 255}},
		{"long", "#00ff00", RGBA{0, 1, 0, 1}},
		{"long no hash", "0000ff", RGBA{0, 0, 1, 1}},
		{"long alpha", "#ffffff00", RGBA{1, 1, 1, 0}},
		{"uppercase", "#FFFFFF", RGBA{1, 1, 1, 1}},
		{"empty", "", RGBA{0, 0, 0, 1}},
		{"bad length", "#12345", RGBA{0, 0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hex(tt.hex)
			if got != tt.want {
				t.Errorf("Hex(%q) = %v, want %v", tt.hex, got, tt.want)
			}
		})
	}
}

func TestRGBA_ColorInterface(t *testing.T) {
	tests := []struct {
		name                       string
		c                          RGBA
		wantR, wantG, wantB, wantA uint32
	}{
		{"opaque black", RGB(0, 0, 0), 0, 0, 0, 65535},
		{"opaque white", RGB(1, 1, 1), 65535, 65535, 65535, 65535},
		{"transparent", RGBA{}, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.wantR || g != tt.wantG || b != tt.wantB || a != tt.wantA {
				t.Errorf("RGBA() = (%d, %d, %d, %d), want (%d, %d, %d, %d)",
					r, g, b, a, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func TestFromColor(t *testing.T) {
	got := FromColor(color.NRGBA{R: 255, G: 0, B: 255, A: 255})
	if got != (RGBA{1, 0, 1, 1}) {
		t.Errorf("FromColor(magenta) = %v", got)
	}
}

func TestPaletteCutColor(t *testing.T) {
	p := DefaultPalette()

	if got := p.cutColor(true).A; got != 1 {
		t.Errorf("laser cut alpha = %v, want 1", got)
	}
	if got := p.cutColor(false).A; got != 0.3 {
		t.Errorf("spindle cut alpha = %v, want 0.3", got)
	}
	if got := p.highlightColor().A; got != 1 {
		t.Errorf("highlight alpha = %v, want 1", got)
	}
	if p.cutColor(false).R != p.Cut.R {
		t.Error("cutColor changed RGB components")
	}
}
