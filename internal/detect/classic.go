package detect

import (
	"image"
	"log"

	"gocv.io/x/gocv"

	"brick-finder/internal/colormatch"
	"brick-finder/internal/inventory"
	"brick-finder/internal/shape"
	"brick-finder/pkg/colorutil"
)

// Classic is the heuristic detection strategy: shape-based candidate
// extraction followed by color matching against the set's outstanding
// bricks, with overlap suppression on the combined result.
type Classic struct {
	finder  *shape.Finder
	matcher *colormatch.Matcher
	set     *inventory.Set
	params  Params
}

// NewClassic creates a classic detector for the given set and palette.
func NewClassic(set *inventory.Set, palette colorutil.Palette, params Params) *Classic {
	return &Classic{
		finder:  shape.NewFinder(shapeParams(params)),
		matcher: colormatch.NewMatcher(palette, matcherConfig(params)),
		set:     set,
		params:  params,
	}
}

// SetParams replaces the detection parameters.
func (c *Classic) SetParams(params Params) {
	c.params = params
	c.finder.SetParams(shapeParams(params))
}

// SetInventory switches the detector to a different set.
func (c *Classic) SetInventory(set *inventory.Set) {
	c.set = set
}

// Detect finds outstanding bricks in a BGR frame. Frame-level failures
// degrade to an empty result; they never propagate.
func (c *Classic) Detect(frame gocv.Mat) []Result {
	if c.set == nil || frame.Empty() {
		return nil
	}

	// Fully-satisfied parts are excluded up front: no point re-detecting
	// a completed part, and the matcher scan stays cheap.
	outstanding := c.set.Outstanding()
	if len(outstanding) == 0 {
		return nil
	}

	candidates := c.finder.FindCandidates(frame)
	if len(candidates) == 0 {
		return nil
	}

	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		roiRect := clampRect(cand.Box.X, cand.Box.Y, cand.Box.Width, cand.Box.Height, frame.Cols(), frame.Rows())
		if roiRect.Empty() {
			continue
		}

		roi := frame.Region(roiRect)
		match := c.matcher.Match(roi, outstanding)
		roi.Close()

		if match == nil || match.Confidence < c.params.MinMatchConfidence {
			continue
		}

		result, err := NewResult(match.PartID, match.Confidence, cand.Box)
		if err != nil {
			// A malformed score rejects this candidate only.
			continue
		}
		result.Color = match.ColorName
		results = append(results, result)
	}

	filtered := SuppressOverlaps(results, c.params.IoUThreshold, c.params.MaxResults)
	if len(filtered) > 0 {
		log.Printf("detect: %d bricks in frame (%d candidates)", len(filtered), len(candidates))
	}
	return filtered
}

// clampRect confines a bounding box to the frame.
func clampRect(x, y, w, h, cols, rows int) image.Rectangle {
	r := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, cols, rows))
	return r
}

func shapeParams(p Params) shape.Params {
	return shape.Params{
		EdgeThreshold:  p.EdgeThreshold,
		MinArea:        p.MinArea(),
		MaxArea:        p.MaxArea(),
		MinPerimeter:   p.MinPerimeter,
		MinVertices:    p.MinVertices,
		MaxVertices:    p.MaxVertices,
		AspectMin:      p.AspectMin,
		AspectMax:      p.AspectMax,
		MinSolidity:    p.MinSolidity,
		MinConvexity:   p.MinConvexity,
		ApproxEpsilon:  p.ApproxEpsilon,
		CleanupDensity: p.EdgeCleanupDensity,
		MaxCandidates:  p.MaxCandidates,
		MaxAccepted:    p.MaxAccepted,
	}
}

func matcherConfig(p Params) colormatch.Config {
	return colormatch.Config{
		ColorThreshold: p.ColorThreshold,
		ScanLimit:      p.CatalogScanLimit,
		MinROIArea:     p.MinROIArea,
	}
}

var _ Detector = (*Classic)(nil)
