// Package detect defines the detection result contract shared by the
// classic and neural detector implementations.
package detect

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"brick-finder/pkg/geometry"
)

// Detector is the contract shared by both detection strategies. A frame in,
// a list of detections out; frame-level failures degrade to an empty list
// rather than an error, so a single bad frame never interrupts scanning.
type Detector interface {
	Detect(frame gocv.Mat) []Result
}

// Result represents one brick observation in one frame. Results are value
// types: built by a detector, folded into the temporal window, then discarded.
type Result struct {
	PartID     string            `json:"part_id"`              // Catalog part number (classic path)
	ClassName  string            `json:"class_name,omitempty"` // Model class name (neural path)
	Confidence float64           `json:"confidence"`           // Score in [0, 1]
	Box        geometry.RectInt  `json:"box"`                  // Bounding box in pixel coordinates
	Center     geometry.PointInt `json:"center"`               // Derived from Box unless overridden
	Color      string            `json:"color,omitempty"`      // Matched color label, if any
	Timestamp  time.Time         `json:"timestamp"`
}

// NewResult builds a detection for the given identity, validating the
// confidence range. The center point is derived from the bounding box.
func NewResult(partID string, confidence float64, box geometry.RectInt) (Result, error) {
	if confidence < 0.0 || confidence > 1.0 {
		return Result{}, fmt.Errorf("confidence must be between 0.0 and 1.0, got %g", confidence)
	}
	return Result{
		PartID:     partID,
		Confidence: confidence,
		Box:        box,
		Center:     box.Center(),
		Timestamp:  time.Now(),
	}, nil
}

// WithCenter returns a copy of the result with an explicit center point,
// overriding the box-derived one.
func (r Result) WithCenter(p geometry.PointInt) Result {
	r.Center = p
	return r
}

// Identity returns the catalog key this detection claims to represent:
// the part number when known, otherwise the model class name.
func (r Result) Identity() string {
	if r.PartID != "" {
		return r.PartID
	}
	return r.ClassName
}

// ContainsPoint reports whether the point lies inside the bounding box.
func (r Result) ContainsPoint(p geometry.PointInt) bool {
	return r.Box.Contains(p)
}

func (r Result) String() string {
	return fmt.Sprintf("Result(%s, conf=%.2f)@(%d,%d %dx%d)",
		r.Identity(), r.Confidence, r.Box.X, r.Box.Y, r.Box.Width, r.Box.Height)
}
