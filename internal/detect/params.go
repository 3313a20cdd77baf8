package detect

import "fmt"

// Params is the flat record of tunables for the detection pipeline.
// The configuration collaborator may supply any subset; DefaultParams fills
// the rest. The caps are cost bounds, not correctness requirements, so they
// are fields rather than constants.
type Params struct {
	// Detection sensitivity
	MinConfidence       float64 // Floor for acting on a stable detection (0-1)
	ConfidenceThreshold float64 // Neural-path acceptance threshold (0-1)
	MinMatchConfidence  float64 // Classic-path color match floor (0-1)

	// Color matching
	ColorThreshold   int // Color distance threshold on the 0-255 scale
	CatalogScanLimit int // Max outstanding catalog entries scanned per frame
	MinROIArea       int // Smallest region worth color-matching (pixels)

	// Shape analysis
	MinBrickSize  int     // Minimum brick side length in pixels
	MaxBrickSize  int     // Maximum brick side length in pixels
	EdgeThreshold int     // Canny low threshold (high = 2x low)
	MinPerimeter  float64 // Contour perimeter floor in pixels
	MinVertices   int     // Polygon approximation vertex bounds
	MaxVertices   int
	AspectMin     float64 // Bounding-box aspect ratio bounds
	AspectMax     float64
	MinSolidity   float64 // Contour area / bounding-box area floor
	MinConvexity  float64 // Contour area / convex-hull area floor
	ApproxEpsilon float64 // Polygon approximation tolerance (fraction of perimeter)

	// Per-frame cost bounds
	EdgeCleanupDensity float64 // Edge density above which morphological cleanup runs
	MaxCandidates      int     // Contours ranked by area before shape filtering
	MaxAccepted        int     // Accepted candidates per frame
	MaxResults         int     // Detections kept after suppression

	// Overlap suppression
	IoUThreshold float64 // Detections overlapping more than this are duplicates

	// Temporal stability
	WindowSize      int // Frames retained by the stabilizer
	StabilityFrames int // Recent frames considered for the quorum
	StabilityQuorum int // Frames an identity must appear in to be stable
}

// DefaultParams returns the reference tuning for handheld webcam footage of
// bricks on a plain background.
func DefaultParams() Params {
	return Params{
		MinConfidence:       0.7,
		ConfidenceThreshold: 0.6,
		MinMatchConfidence:  0.3,

		ColorThreshold:   30,
		CatalogScanLimit: 20,
		MinROIArea:       100,

		MinBrickSize:  20,
		MaxBrickSize:  200,
		EdgeThreshold: 50,
		MinPerimeter:  50,
		MinVertices:   4,
		MaxVertices:   12,
		AspectMin:     0.3,
		AspectMax:     5.0,
		MinSolidity:   0.5,
		MinConvexity:  0.8,
		ApproxEpsilon: 0.02,

		EdgeCleanupDensity: 0.10,
		MaxCandidates:      100,
		MaxAccepted:        50,
		MaxResults:         10,

		IoUThreshold: 0.3,

		WindowSize:      10,
		StabilityFrames: 3,
		StabilityQuorum: 2,
	}
}

// WithEdgeThreshold returns a copy of params with a new Canny low threshold.
func (p Params) WithEdgeThreshold(t int) Params {
	p.EdgeThreshold = t
	return p
}

// WithSizeRange returns a copy of params with new brick side-length bounds.
func (p Params) WithSizeRange(minSize, maxSize int) Params {
	p.MinBrickSize = minSize
	p.MaxBrickSize = maxSize
	return p
}

// WithConfidenceThreshold returns a copy of params with a new neural
// acceptance threshold.
func (p Params) WithConfidenceThreshold(t float64) Params {
	p.ConfidenceThreshold = t
	return p
}

// WithColorThreshold returns a copy of params with a new color distance
// threshold on the 0-255 scale.
func (p Params) WithColorThreshold(t int) Params {
	p.ColorThreshold = t
	return p
}

// MinArea returns the minimum candidate area in square pixels.
func (p Params) MinArea() float64 {
	return float64(p.MinBrickSize * p.MinBrickSize)
}

// MaxArea returns the maximum candidate area in square pixels.
func (p Params) MaxArea() float64 {
	return float64(p.MaxBrickSize * p.MaxBrickSize)
}

// Validate checks that all parameters are within acceptable ranges.
func (p Params) Validate() error {
	if p.MinConfidence < 0 || p.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be between 0.0 and 1.0, got %g", p.MinConfidence)
	}
	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be between 0.0 and 1.0, got %g", p.ConfidenceThreshold)
	}
	if p.MinMatchConfidence < 0 || p.MinMatchConfidence > 1 {
		return fmt.Errorf("min match confidence must be between 0.0 and 1.0, got %g", p.MinMatchConfidence)
	}
	if p.ColorThreshold < 0 || p.ColorThreshold > 255 {
		return fmt.Errorf("color threshold must be between 0 and 255, got %d", p.ColorThreshold)
	}
	if p.MinBrickSize < 1 {
		return fmt.Errorf("min brick size must be positive, got %d", p.MinBrickSize)
	}
	if p.MaxBrickSize <= p.MinBrickSize {
		return fmt.Errorf("max brick size must exceed min brick size, got %d <= %d", p.MaxBrickSize, p.MinBrickSize)
	}
	if p.EdgeThreshold < 1 || p.EdgeThreshold > 255 {
		return fmt.Errorf("edge threshold must be between 1 and 255, got %d", p.EdgeThreshold)
	}
	if p.MinVertices < 3 || p.MaxVertices < p.MinVertices {
		return fmt.Errorf("invalid vertex bounds [%d, %d]", p.MinVertices, p.MaxVertices)
	}
	if p.AspectMin <= 0 || p.AspectMax < p.AspectMin {
		return fmt.Errorf("invalid aspect ratio bounds [%g, %g]", p.AspectMin, p.AspectMax)
	}
	if p.IoUThreshold < 0 || p.IoUThreshold > 1 {
		return fmt.Errorf("IoU threshold must be between 0.0 and 1.0, got %g", p.IoUThreshold)
	}
	if p.MaxCandidates < 1 || p.MaxAccepted < 1 || p.MaxResults < 1 {
		return fmt.Errorf("result caps must be positive")
	}
	if p.CatalogScanLimit < 1 {
		return fmt.Errorf("catalog scan limit must be positive, got %d", p.CatalogScanLimit)
	}
	if p.WindowSize < 1 || p.StabilityFrames < 1 || p.StabilityFrames > p.WindowSize {
		return fmt.Errorf("invalid stability window: size=%d frames=%d", p.WindowSize, p.StabilityFrames)
	}
	if p.StabilityQuorum < 1 || p.StabilityQuorum > p.StabilityFrames {
		return fmt.Errorf("stability quorum must be between 1 and %d, got %d", p.StabilityFrames, p.StabilityQuorum)
	}
	return nil
}
