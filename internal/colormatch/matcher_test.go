package colormatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"brick-finder/internal/inventory"
	"brick-finder/pkg/colorutil"
)

// solidMat builds a uniform BGR region of the given size.
func solidMat(rows, cols int, b, g, r float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func TestMatchSolidRedRegion(t *testing.T) {
	m := NewMatcher(colorutil.LegoPalette(), DefaultConfig())

	// Below the small-region cutoff, so the mean color path runs.
	roi := solidMat(15, 15, 0, 0, 255)
	defer roi.Close()

	outstanding := []inventory.Brick{
		{PartNumber: "3001", Color: "red", Quantity: 1},
		{PartNumber: "3003", Color: "blue", Quantity: 1},
	}

	match := m.Match(roi, outstanding)
	require.NotNil(t, match)
	require.Equal(t, "3001", match.PartID)
	require.Equal(t, "red", match.ColorName)
	require.Greater(t, match.Confidence, 0.9)
}

func TestMatchLargeRegionUsesHistogram(t *testing.T) {
	m := NewMatcher(colorutil.LegoPalette(), DefaultConfig())

	// 100x100 is above the small-region cutoff, exercising the hue histogram.
	roi := solidMat(100, 100, 255, 0, 0)
	defer roi.Close()

	outstanding := []inventory.Brick{
		{PartNumber: "3001", Color: "red", Quantity: 1},
		{PartNumber: "3003", Color: "blue", Quantity: 1},
	}

	match := m.Match(roi, outstanding)
	require.NotNil(t, match)
	require.Equal(t, "3003", match.PartID)
	require.Equal(t, "blue", match.ColorName)
}

func TestMatchRejectsTinyRegion(t *testing.T) {
	m := NewMatcher(colorutil.LegoPalette(), DefaultConfig())

	roi := solidMat(5, 5, 0, 0, 255)
	defer roi.Close()

	outstanding := []inventory.Brick{{PartNumber: "3001", Color: "red", Quantity: 1}}
	require.Nil(t, m.Match(roi, outstanding))
}

func TestMatchNothingOutstanding(t *testing.T) {
	m := NewMatcher(colorutil.LegoPalette(), DefaultConfig())

	roi := solidMat(15, 15, 0, 0, 255)
	defer roi.Close()

	require.Nil(t, m.Match(roi, nil))
}

func TestMatchBelowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColorThreshold = 254 // require near-perfect similarity
	m := NewMatcher(colorutil.LegoPalette(), cfg)

	// Mid-gray scores poorly against saturated blue.
	roi := solidMat(30, 30, 128, 128, 128)
	defer roi.Close()

	outstanding := []inventory.Brick{{PartNumber: "3003", Color: "blue", Quantity: 1}}
	require.Nil(t, m.Match(roi, outstanding))
}

func TestScanWindowRotates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScanLimit = 2
	m := NewMatcher(colorutil.LegoPalette(), cfg)

	var bricks []inventory.Brick
	for i := 0; i < 5; i++ {
		bricks = append(bricks, inventory.Brick{
			PartNumber: fmt.Sprintf("p%d", i), Color: "red", Quantity: 1,
		})
	}

	first := m.scanWindow(bricks)
	require.Len(t, first, 2)
	require.Equal(t, "p0", first[0].PartNumber)
	require.Equal(t, "p1", first[1].PartNumber)

	second := m.scanWindow(bricks)
	require.Equal(t, "p2", second[0].PartNumber)
	require.Equal(t, "p3", second[1].PartNumber)

	// The window wraps around the catalog.
	third := m.scanWindow(bricks)
	require.Equal(t, "p4", third[0].PartNumber)
	require.Equal(t, "p0", third[1].PartNumber)
}

func TestScanWindowSmallCatalogPassThrough(t *testing.T) {
	m := NewMatcher(colorutil.LegoPalette(), DefaultConfig())

	bricks := []inventory.Brick{{PartNumber: "3001", Color: "red", Quantity: 1}}
	require.Equal(t, bricks, m.scanWindow(bricks))
	require.Equal(t, bricks, m.scanWindow(bricks), "no rotation below the limit")
}

func TestColorNameFor(t *testing.T) {
	m := NewMatcher(colorutil.LegoPalette(), DefaultConfig())

	direct := inventory.Brick{PartNumber: "1", Color: "Blue", Quantity: 1}
	require.Equal(t, "blue", m.colorNameFor(direct))

	spaced := inventory.Brick{PartNumber: "2", Color: "Dark Blue", Quantity: 1}
	require.Equal(t, "dark_blue", m.colorNameFor(spaced))

	// Unknown label falls back to keyword matching on the brick name.
	keyword := inventory.Brick{PartNumber: "3", Color: "shiny green thing", Quantity: 1}
	require.Equal(t, "green", m.colorNameFor(keyword))

	// No recognizable color defaults to red.
	unknown := inventory.Brick{PartNumber: "4", Color: "chartreuse", Quantity: 1}
	require.Equal(t, "red", m.colorNameFor(unknown))
}

func TestSimilarityMemoized(t *testing.T) {
	m := NewMatcher(colorutil.LegoPalette(), DefaultConfig())

	red := colorutil.FromRGB255(255, 0, 0)
	blue := colorutil.FromRGB255(0, 0, 255)

	first := m.similarity(red, blue)
	require.Len(t, m.simCache, 1)

	// The symmetric pair hits the same cache entry.
	second := m.similarity(blue, red)
	require.Len(t, m.simCache, 1)
	require.Equal(t, first, second)
}
