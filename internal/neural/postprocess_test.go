package neural

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// row builds a raw output row: center-size box followed by class scores.
func row(cx, cy, w, h float32, scores ...float32) []float32 {
	return append([]float32{cx, cy, w, h}, scores...)
}

func TestDecodeRowsThreshold(t *testing.T) {
	names := []string{"2x4 Red Brick", "Blue Plate"}
	rows := [][]float32{
		row(320, 320, 64, 64, 0.55, 0.1), // below threshold
		row(320, 320, 64, 64, 0.61, 0.1), // above threshold
	}

	results := decodeRows(rows, names, 0.6, nil, 1, 1)
	require.Len(t, results, 1)
	require.Equal(t, "2x4 Red Brick", results[0].ClassName)
	require.InDelta(t, 0.61, results[0].Confidence, 1e-6)
}

func TestDecodeRowsBoxScaling(t *testing.T) {
	rows := [][]float32{row(320, 320, 64, 32, 0.9)}

	// Frame is twice the model input in x, half in y.
	results := decodeRows(rows, []string{"brick"}, 0.5, nil, 2.0, 0.5)
	require.Len(t, results, 1)

	box := results[0].Box
	require.Equal(t, 640-64, box.X) // cx*2 - w*2/2
	require.Equal(t, 160-8, box.Y)  // cy/2 - h/2/2
	require.Equal(t, 128, box.Width)
	require.Equal(t, 16, box.Height)
}

func TestDecodeRowsAllowList(t *testing.T) {
	names := []string{"2x4 Red Brick", "Blue Plate"}
	rows := [][]float32{
		row(100, 100, 40, 40, 0.9, 0.1), // class 0: matched by substring "red"
		row(200, 200, 40, 40, 0.1, 0.9), // class 1: filtered out
	}

	allow := normalizeAllowList([]string{"red"})
	results := decodeRows(rows, names, 0.5, allow, 1, 1)
	require.Len(t, results, 1)
	require.Equal(t, "2x4 Red Brick", results[0].ClassName)
}

func TestDecodeRowsPicksBestClass(t *testing.T) {
	names := []string{"a", "b", "c"}
	rows := [][]float32{row(100, 100, 40, 40, 0.2, 0.8, 0.3)}

	results := decodeRows(rows, names, 0.5, nil, 1, 1)
	require.Len(t, results, 1)
	require.Equal(t, "b", results[0].ClassName)
}

func TestDecodeRowsMissingClassNames(t *testing.T) {
	rows := [][]float32{row(100, 100, 40, 40, 0.1, 0.9)}

	results := decodeRows(rows, nil, 0.5, nil, 1, 1)
	require.Len(t, results, 1)
	require.Equal(t, "class 1", results[0].ClassName)
}

func TestDecodeRowsSkipsMalformed(t *testing.T) {
	rows := [][]float32{
		{1, 2, 3},                   // too short to hold a box
		row(100, 100, 40, 40),       // no class scores
		row(100, 100, 40, 40, 0.95), // valid
	}

	results := decodeRows(rows, []string{"brick"}, 0.5, nil, 1, 1)
	require.Len(t, results, 1)
}

func TestAllowed(t *testing.T) {
	allow := normalizeAllowList([]string{"Red", " blue "})

	require.True(t, allowed("red", allow), "exact match")
	require.True(t, allowed("2x4 Red Brick", allow), "substring match")
	require.True(t, allowed("BLUE plate", allow), "case-insensitive")
	require.False(t, allowed("Green Slope", allow))

	require.True(t, allowed("anything", nil), "nil list accepts all")
}

func TestNormalizeAllowList(t *testing.T) {
	require.Nil(t, normalizeAllowList(nil))
	require.Nil(t, normalizeAllowList([]string{"", "  "}))

	allow := normalizeAllowList([]string{"Red", "red", " BLUE "})
	require.Len(t, allow, 2)
	_, ok := allow["red"]
	require.True(t, ok)
	_, ok = allow["blue"]
	require.True(t, ok)
}

func TestBestClass(t *testing.T) {
	id, score := bestClass([]float32{0.1, 0.7, 0.3})
	require.Equal(t, 1, id)
	require.InDelta(t, 0.7, score, 1e-6)

	id, _ = bestClass([]float32{0.5})
	require.Zero(t, id)
}
