package detect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"brick-finder/pkg/geometry"
)

func TestNewResult(t *testing.T) {
	box := geometry.RectInt{X: 10, Y: 20, Width: 40, Height: 60}
	r, err := NewResult("3001", 0.85, box)
	require.NoError(t, err)
	require.Equal(t, "3001", r.PartID)
	require.InDelta(t, 0.85, r.Confidence, 1e-9)
	require.Equal(t, box, r.Box)
	require.False(t, r.Timestamp.IsZero())

	// Center derives from the box.
	require.Equal(t, geometry.PointInt{X: 30, Y: 50}, r.Center)
}

func TestNewResultRejectsBadConfidence(t *testing.T) {
	box := geometry.RectInt{Width: 10, Height: 10}

	_, err := NewResult("3001", -0.1, box)
	require.Error(t, err)

	_, err = NewResult("3001", 1.5, box)
	require.Error(t, err)

	// Boundary values are valid.
	_, err = NewResult("3001", 0.0, box)
	require.NoError(t, err)
	_, err = NewResult("3001", 1.0, box)
	require.NoError(t, err)
}

func TestResultWithCenter(t *testing.T) {
	r, err := NewResult("3001", 0.9, geometry.RectInt{Width: 40, Height: 40})
	require.NoError(t, err)

	moved := r.WithCenter(geometry.PointInt{X: 7, Y: 9})
	require.Equal(t, geometry.PointInt{X: 7, Y: 9}, moved.Center)
	require.Equal(t, geometry.PointInt{X: 20, Y: 20}, r.Center, "original is unchanged")
}

func TestResultIdentity(t *testing.T) {
	r := Result{PartID: "3001", ClassName: "2x4 Brick"}
	require.Equal(t, "3001", r.Identity())

	neural := Result{ClassName: "2x4 Brick"}
	require.Equal(t, "2x4 Brick", neural.Identity())
}

func TestResultContainsPoint(t *testing.T) {
	r := Result{Box: geometry.RectInt{X: 10, Y: 10, Width: 20, Height: 20}}
	require.True(t, r.ContainsPoint(geometry.PointInt{X: 15, Y: 15}))
	require.False(t, r.ContainsPoint(geometry.PointInt{X: 50, Y: 50}))
}
