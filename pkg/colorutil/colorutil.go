// Package colorutil provides shared color utilities for the brick finder application.
package colorutil

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// maxRGBDistance is the Euclidean distance between black and white in
// go-colorful's unit RGB cube.
var maxRGBDistance = math.Sqrt(3)

// Palette is an immutable mapping from color names to reference colors.
// Matching code receives a Palette at construction time so alternate
// palettes can be substituted in tests.
type Palette map[string]colorful.Color

// LegoPalette returns the standard Lego brick colors.
func LegoPalette() Palette {
	return Palette{
		"black":        FromRGB255(0, 0, 0),
		"white":        FromRGB255(255, 255, 255),
		"red":          FromRGB255(255, 0, 0),
		"blue":         FromRGB255(0, 0, 255),
		"green":        FromRGB255(0, 255, 0),
		"yellow":       FromRGB255(255, 255, 0),
		"orange":       FromRGB255(255, 165, 0),
		"purple":       FromRGB255(128, 0, 128),
		"pink":         FromRGB255(255, 192, 203),
		"brown":        FromRGB255(165, 42, 42),
		"gray":         FromRGB255(128, 128, 128),
		"light_gray":   FromRGB255(211, 211, 211),
		"dark_gray":    FromRGB255(64, 64, 64),
		"lime":         FromRGB255(50, 205, 50),
		"cyan":         FromRGB255(0, 255, 255),
		"magenta":      FromRGB255(255, 0, 255),
		"tan":          FromRGB255(210, 180, 140),
		"dark_blue":    FromRGB255(0, 0, 139),
		"bright_green": FromRGB255(0, 255, 127),
	}
}

// Names returns the palette's color names in sorted order.
func (p Palette) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromRGB255 builds a color from 8-bit RGB components.
func FromRGB255(r, g, b uint8) colorful.Color {
	return colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}

// Similarity returns a normalized RGB similarity in [0, 1]: 1.0 for identical
// colors, 0.0 for black vs white. Normalizing keeps thresholds independent of
// the color-space scale and comparable across palettes.
func Similarity(a, b colorful.Color) float64 {
	return 1.0 - a.DistanceRgb(b)/maxRGBDistance
}

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0 // V in 0-255

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0 // S in 0-255
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	h = h / 2 // Convert to OpenCV's 0-180 range

	return h, s, v
}

// HSVToRGB converts HSV in OpenCV convention (H 0-180, S 0-255, V 0-255)
// back to RGB components in 0-255.
func HSVToRGB(h, s, v float64) (r, g, b float64) {
	hDeg := h * 2 // Back to 0-360
	sN := s / 255.0
	vN := v / 255.0

	c := vN * sN
	x := c * (1 - math.Abs(math.Mod(hDeg/60, 2)-1))
	m := vN - c

	var rp, gp, bp float64
	switch {
	case hDeg < 60:
		rp, gp, bp = c, x, 0
	case hDeg < 120:
		rp, gp, bp = x, c, 0
	case hDeg < 180:
		rp, gp, bp = 0, c, x
	case hDeg < 240:
		rp, gp, bp = 0, x, c
	case hDeg < 300:
		rp, gp, bp = x, 0, c
	default:
		rp, gp, bp = c, 0, x
	}

	return (rp + m) * 255.0, (gp + m) * 255.0, (bp + m) * 255.0
}
