// Package colormatch assigns catalog identities to candidate regions by
// color-distance scoring against a fixed palette.
package colormatch

import (
	"log"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"brick-finder/internal/inventory"
	"brick-finder/pkg/colorutil"
)

// hueBins is the histogram resolution over OpenCV's 0-180 hue range.
const hueBins = 8

// smallRegionArea is the pixel count below which mean color is used instead
// of the histogram; tiny regions don't have enough pixels for a stable mode.
const smallRegionArea = 400

// Config holds the matcher tunables.
type Config struct {
	// ColorThreshold is the acceptance threshold on the 0-255 scale;
	// matches must score above ColorThreshold/255 in normalized similarity.
	ColorThreshold int

	// ScanLimit caps how many outstanding catalog entries are scored per
	// call. When the catalog is larger, the scanned window rotates across
	// calls so every entry is eventually considered.
	ScanLimit int

	// MinROIArea rejects regions below this pixel count before any color work.
	MinROIArea int
}

// DefaultConfig returns the matcher defaults.
func DefaultConfig() Config {
	return Config{
		ColorThreshold: 30,
		ScanLimit:      20,
		MinROIArea:     100,
	}
}

// Match is the result of a successful color match.
type Match struct {
	PartID     string
	ColorName  string
	Confidence float64
	RGB        colorful.Color
}

// Matcher scores candidate regions against the palette colors of a set's
// outstanding bricks. Not safe for concurrent use; the frame loop is the
// sole caller.
type Matcher struct {
	palette colorutil.Palette
	cfg     Config

	// Similarity is symmetric and the palette is small, so pair results
	// are memoized across frames.
	simCache map[simKey]float64
	cursor   int
}

type simKey struct {
	a, b uint32
}

// NewMatcher creates a matcher for the given palette.
func NewMatcher(palette colorutil.Palette, cfg Config) *Matcher {
	return &Matcher{
		palette:  palette,
		cfg:      cfg,
		simCache: make(map[simKey]float64),
	}
}

// Match finds the outstanding brick whose palette color best matches the
// region's dominant color. Returns nil when the region is too small, no
// entry scores above the threshold, or there is nothing outstanding.
func (m *Matcher) Match(roi gocv.Mat, outstanding []inventory.Brick) *Match {
	if len(outstanding) == 0 || roi.Empty() {
		return nil
	}
	if roi.Rows()*roi.Cols() < m.cfg.MinROIArea {
		return nil
	}

	dominant := m.dominantColor(roi)

	var best *Match
	for _, brick := range m.scanWindow(outstanding) {
		name := m.colorNameFor(brick)
		target, ok := m.palette[name]
		if !ok {
			continue
		}
		sim := m.similarity(dominant, target)
		if best == nil || sim > best.Confidence {
			best = &Match{
				PartID:     brick.PartNumber,
				ColorName:  name,
				Confidence: sim,
				RGB:        target,
			}
		}
	}

	// Threshold on the normalized [0,1] scale keeps matching independent
	// of the color-space scale.
	threshold := float64(m.cfg.ColorThreshold) / 255.0
	if best == nil || best.Confidence <= threshold {
		return nil
	}
	return best
}

// scanWindow returns at most ScanLimit bricks, rotating the window start
// across calls so a large catalog is covered over successive frames.
func (m *Matcher) scanWindow(bricks []inventory.Brick) []inventory.Brick {
	if len(bricks) <= m.cfg.ScanLimit {
		return bricks
	}
	start := m.cursor % len(bricks)
	window := make([]inventory.Brick, 0, m.cfg.ScanLimit)
	for i := 0; i < m.cfg.ScanLimit; i++ {
		window = append(window, bricks[(start+i)%len(bricks)])
	}
	m.cursor = (start + m.cfg.ScanLimit) % len(bricks)
	return window
}

// dominantColor extracts a representative color for the region: mean color
// for small regions, modal hue bin for larger ones. Falls back to mean color
// when the histogram yields nothing usable.
func (m *Matcher) dominantColor(roi gocv.Mat) colorful.Color {
	if roi.Rows()*roi.Cols() < smallRegionArea {
		return meanColor(roi)
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(roi, &hsv, gocv.ColorBGRToHSV)
	if hsv.Empty() {
		return meanColor(roi)
	}

	var counts [hueBins]int
	var sats, vals [hueBins][]float64
	for y := 0; y < hsv.Rows(); y++ {
		for x := 0; x < hsv.Cols(); x++ {
			h := float64(hsv.GetUCharAt(y, x*3))
			s := float64(hsv.GetUCharAt(y, x*3+1))
			v := float64(hsv.GetUCharAt(y, x*3+2))
			bin := int(h) * hueBins / 180
			if bin >= hueBins {
				bin = hueBins - 1
			}
			counts[bin]++
			sats[bin] = append(sats[bin], s)
			vals[bin] = append(vals[bin], v)
		}
	}

	modal := 0
	for i := 1; i < hueBins; i++ {
		if counts[i] > counts[modal] {
			modal = i
		}
	}
	if counts[modal] == 0 {
		return meanColor(roi)
	}

	// Modal bin's center hue with the mean saturation/value of the pixels
	// that fell into it.
	hue := (float64(modal) + 0.5) * 180.0 / hueBins
	r, g, b := colorutil.HSVToRGB(hue, stat.Mean(sats[modal], nil), stat.Mean(vals[modal], nil))
	return colorutil.FromRGB255(uint8(clamp255(r)), uint8(clamp255(g)), uint8(clamp255(b)))
}

// similarity memoizes the normalized color similarity by quantized pair.
func (m *Matcher) similarity(a, b colorful.Color) float64 {
	key := simKey{a: packColor(a), b: packColor(b)}
	if key.a > key.b {
		key.a, key.b = key.b, key.a
	}
	if sim, ok := m.simCache[key]; ok {
		return sim
	}
	sim := colorutil.Similarity(a, b)
	m.simCache[key] = sim
	return sim
}

// colorNameFor maps a brick's color label to a palette name. Unlabelled
// bricks fall back to keyword matching against the full brick name.
func (m *Matcher) colorNameFor(brick inventory.Brick) string {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(brick.Color)), " ", "_")
	if _, ok := m.palette[name]; ok {
		return name
	}

	lower := strings.ToLower(brick.Name())
	for _, candidate := range m.palette.Names() {
		if strings.Contains(lower, strings.ReplaceAll(candidate, "_", " ")) ||
			strings.Contains(lower, candidate) {
			return candidate
		}
	}

	log.Printf("colormatch: no palette color for brick %s, defaulting to red", brick.PartNumber)
	return "red"
}

// meanColor averages the region's pixels; gocv returns BGR channel order.
func meanColor(roi gocv.Mat) colorful.Color {
	mean := gocv.Mean(roi)
	return colorutil.FromRGB255(
		uint8(clamp255(mean.Val3)),
		uint8(clamp255(mean.Val2)),
		uint8(clamp255(mean.Val1)),
	)
}

func packColor(c colorful.Color) uint32 {
	r, g, b := c.RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
