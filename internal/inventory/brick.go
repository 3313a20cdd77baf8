// Package inventory tracks which bricks of a Lego set have been found.
package inventory

import (
	"fmt"
)

// Brick represents one catalog entry of a Lego set: a part/color identity
// with a required quantity and a running found count.
type Brick struct {
	PartNumber    string `json:"part_number"`
	Color         string `json:"color"`
	Quantity      int    `json:"quantity"`
	FoundQuantity int    `json:"found_quantity"`
}

// NewBrick creates a brick entry and validates its quantities.
func NewBrick(partNumber, color string, quantity int) (Brick, error) {
	b := Brick{PartNumber: partNumber, Color: color, Quantity: quantity}
	if err := b.Validate(); err != nil {
		return Brick{}, err
	}
	return b, nil
}

// Validate checks the quantity invariants.
func (b Brick) Validate() error {
	if b.PartNumber == "" {
		return fmt.Errorf("brick part number must not be empty")
	}
	if b.Quantity < 1 {
		return fmt.Errorf("brick %s: quantity must be positive, got %d", b.PartNumber, b.Quantity)
	}
	if b.FoundQuantity < 0 {
		return fmt.Errorf("brick %s: found quantity cannot be negative, got %d", b.PartNumber, b.FoundQuantity)
	}
	if b.FoundQuantity > b.Quantity {
		return fmt.Errorf("brick %s: found quantity %d exceeds total %d", b.PartNumber, b.FoundQuantity, b.Quantity)
	}
	return nil
}

// ID returns the catalog identity of the brick (its part number).
func (b Brick) ID() string {
	return b.PartNumber
}

// Name returns a human-readable label combining color and part number.
func (b Brick) Name() string {
	return fmt.Sprintf("%s %s", b.Color, b.PartNumber)
}

// IsFullyFound reports whether every required instance has been found.
func (b Brick) IsFullyFound() bool {
	return b.FoundQuantity >= b.Quantity
}

// Remaining returns how many instances are still outstanding.
func (b Brick) Remaining() int {
	if b.FoundQuantity >= b.Quantity {
		return 0
	}
	return b.Quantity - b.FoundQuantity
}
