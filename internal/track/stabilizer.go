// Package track provides temporal stabilization of per-frame detections:
// only identities that recur across a quorum of recent frames are reported,
// suppressing single-frame flicker.
package track

import (
	"brick-finder/internal/detect"
)

// Stabilizer holds a bounded FIFO of recent per-frame detection lists and
// votes identities stable when they appear in enough of the newest frames.
//
// The window is owned exclusively by the stabilizer and mutated only by
// Push. Pushes must arrive in strict frame order from a single caller;
// the stabilizer is deliberately unsynchronized.
type Stabilizer struct {
	capacity     int
	quorumFrames int
	quorumMin    int
	window       [][]detect.Result
}

// New creates a stabilizer that retains capacity frames and requires an
// identity to appear in at least quorumMin of the newest quorumFrames
// frames before reporting it.
func New(capacity, quorumFrames, quorumMin int) *Stabilizer {
	return &Stabilizer{
		capacity:     capacity,
		quorumFrames: quorumFrames,
		quorumMin:    quorumMin,
	}
}

// Default returns the reference configuration: a 10-frame window with a
// 2-of-3 quorum. Two of three debounces single-frame false positives and
// negatives without adding more than three frames of latency.
func Default() *Stabilizer {
	return New(10, 3, 2)
}

// Push appends the newest frame's detections, evicting the oldest frame
// once the window is full.
func (s *Stabilizer) Push(frame []detect.Result) {
	owned := make([]detect.Result, len(frame))
	copy(owned, frame)
	s.window = append(s.window, owned)
	if len(s.window) > s.capacity {
		s.window = s.window[1:]
	}
}

// Len returns the number of frames currently in the window.
func (s *Stabilizer) Len() int {
	return len(s.window)
}

// Reset discards the window, e.g. when detection is re-enabled after a pause.
func (s *Stabilizer) Reset() {
	s.window = nil
}

// Stable returns one representative detection per identity that met the
// quorum over the newest frames: the most recent occurrence, so the current
// bounding box wins over older ones. Empty until quorumFrames frames have
// been pushed.
func (s *Stabilizer) Stable() []detect.Result {
	if len(s.window) < s.quorumFrames {
		return nil
	}

	recent := s.window[len(s.window)-s.quorumFrames:]

	// Count frame presence per identity, not occurrences: two hits in one
	// frame are still one frame of evidence.
	frameCounts := make(map[string]int)
	latest := make(map[string]detect.Result)
	var order []string

	for _, frame := range recent {
		seen := make(map[string]bool)
		for _, d := range frame {
			id := d.Identity()
			if id == "" {
				continue
			}
			if !seen[id] {
				seen[id] = true
				if frameCounts[id] == 0 {
					order = append(order, id)
				}
				frameCounts[id]++
			}
			latest[id] = d
		}
	}

	var stable []detect.Result
	for _, id := range order {
		if frameCounts[id] >= s.quorumMin {
			stable = append(stable, latest[id])
		}
	}
	return stable
}
