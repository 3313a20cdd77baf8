package inventory

import (
	"fmt"
	"sync"
)

// Set represents a complete Lego set with its component bricks.
// It is safe for concurrent use: the frame loop marks bricks found while
// the surrounding application reads progress.
type Set struct {
	Name      string
	SetNumber string

	mu     sync.RWMutex
	bricks []Brick
}

// NewSet creates a set from its brick list, validating every entry.
func NewSet(name, setNumber string, bricks []Brick) (*Set, error) {
	for _, b := range bricks {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("set %s: %w", setNumber, err)
		}
	}
	owned := make([]Brick, len(bricks))
	copy(owned, bricks)
	return &Set{Name: name, SetNumber: setNumber, bricks: owned}, nil
}

// Bricks returns a snapshot of all bricks in the set.
func (s *Set) Bricks() []Brick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Brick, len(s.bricks))
	copy(out, s.bricks)
	return out
}

// Get returns the brick with the given part number, if present.
func (s *Set) Get(partNumber string) (Brick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bricks {
		if b.PartNumber == partNumber {
			return b, true
		}
	}
	return Brick{}, false
}

// Outstanding returns the bricks that are not yet fully found.
func (s *Set) Outstanding() []Brick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Brick
	for _, b := range s.bricks {
		if !b.IsFullyFound() {
			out = append(out, b)
		}
	}
	return out
}

// MarkFound records quantity instances of a part as found.
// Returns false if the part is unknown or the count would exceed the total.
func (s *Set) MarkFound(partNumber string, quantity int) bool {
	if quantity < 1 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bricks {
		if s.bricks[i].PartNumber == partNumber {
			if s.bricks[i].FoundQuantity+quantity > s.bricks[i].Quantity {
				return false
			}
			s.bricks[i].FoundQuantity += quantity
			return true
		}
	}
	return false
}

// Unmark removes quantity instances of a part from the found count.
// Returns false if the part is unknown or the count would go negative.
func (s *Set) Unmark(partNumber string, quantity int) bool {
	if quantity < 1 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bricks {
		if s.bricks[i].PartNumber == partNumber {
			if s.bricks[i].FoundQuantity-quantity < 0 {
				return false
			}
			s.bricks[i].FoundQuantity -= quantity
			return true
		}
	}
	return false
}

// FoundCount returns the total number of brick instances found so far.
func (s *Set) FoundCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, b := range s.bricks {
		total += b.FoundQuantity
	}
	return total
}

// TotalCount returns the total number of brick instances in the set.
func (s *Set) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, b := range s.bricks {
		total += b.Quantity
	}
	return total
}

// IsComplete reports whether every brick in the set has been fully found.
func (s *Set) IsComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bricks {
		if !b.IsFullyFound() {
			return false
		}
	}
	return true
}
