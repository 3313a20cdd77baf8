package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBrick(t *testing.T) {
	b, err := NewBrick("3001", "red", 4)
	require.NoError(t, err)
	require.Equal(t, "3001", b.ID())
	require.Equal(t, "red 3001", b.Name())
	require.Equal(t, 4, b.Remaining())
	require.False(t, b.IsFullyFound())
}

func TestNewBrickValidation(t *testing.T) {
	_, err := NewBrick("", "red", 4)
	require.Error(t, err)

	_, err = NewBrick("3001", "red", 0)
	require.Error(t, err)

	bad := Brick{PartNumber: "3001", Quantity: 2, FoundQuantity: 3}
	require.Error(t, bad.Validate())

	neg := Brick{PartNumber: "3001", Quantity: 2, FoundQuantity: -1}
	require.Error(t, neg.Validate())
}

func TestBrickFullyFound(t *testing.T) {
	b := Brick{PartNumber: "3001", Color: "red", Quantity: 2, FoundQuantity: 2}
	require.True(t, b.IsFullyFound())
	require.Zero(t, b.Remaining())
}
