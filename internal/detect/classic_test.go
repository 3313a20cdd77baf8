package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"brick-finder/internal/inventory"
	"brick-finder/pkg/colorutil"
)

func classicSet(t *testing.T) *inventory.Set {
	t.Helper()
	set, err := inventory.NewSet("Classic", "1", []inventory.Brick{
		{PartNumber: "3001", Color: "red", Quantity: 2},
		{PartNumber: "3003", Color: "blue", Quantity: 1},
	})
	require.NoError(t, err)
	return set
}

func redBrickFrame() gocv.Mat {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	gocv.Rectangle(&frame, image.Rect(100, 120, 180, 180),
		color.RGBA{R: 230, G: 20, B: 20, A: 255}, -1)
	return frame
}

func TestClassicDetectRedBrick(t *testing.T) {
	set := classicSet(t)
	c := NewClassic(set, colorutil.LegoPalette(), DefaultParams())

	frame := redBrickFrame()
	defer frame.Close()

	results := c.Detect(frame)
	require.Len(t, results, 1)
	require.Equal(t, "3001", results[0].PartID)
	require.Equal(t, "red", results[0].Color)
	require.GreaterOrEqual(t, results[0].Confidence, DefaultParams().MinMatchConfidence)

	box := results[0].Box
	require.InDelta(t, 100, box.X, 3)
	require.InDelta(t, 120, box.Y, 3)
}

func TestClassicDetectEmptyFrame(t *testing.T) {
	c := NewClassic(classicSet(t), colorutil.LegoPalette(), DefaultParams())
	require.Nil(t, c.Detect(gocv.Mat{}))

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	require.Empty(t, c.Detect(black))
}

func TestClassicDetectSkipsCompletedSet(t *testing.T) {
	set := classicSet(t)
	require.True(t, set.MarkFound("3001", 2))
	require.True(t, set.MarkFound("3003", 1))

	c := NewClassic(set, colorutil.LegoPalette(), DefaultParams())

	frame := redBrickFrame()
	defer frame.Close()

	require.Nil(t, c.Detect(frame), "nothing outstanding, nothing to detect")
}

func TestClassicDetectNilSet(t *testing.T) {
	c := NewClassic(nil, colorutil.LegoPalette(), DefaultParams())

	frame := redBrickFrame()
	defer frame.Close()
	require.Nil(t, c.Detect(frame))
}

func TestClassicSetInventory(t *testing.T) {
	c := NewClassic(nil, colorutil.LegoPalette(), DefaultParams())
	c.SetInventory(classicSet(t))

	frame := redBrickFrame()
	defer frame.Close()
	require.NotEmpty(t, c.Detect(frame))
}

func TestClassicSetParams(t *testing.T) {
	c := NewClassic(classicSet(t), colorutil.LegoPalette(), DefaultParams())

	// Raising the minimum size above the drawn brick suppresses it.
	c.SetParams(DefaultParams().WithSizeRange(150, 400))

	frame := redBrickFrame()
	defer frame.Close()
	require.Empty(t, c.Detect(frame))
}
