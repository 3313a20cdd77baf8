// Package shape extracts brick-like candidate regions from video frames
// using edge detection and polygon-shape heuristics. No learning involved.
package shape

import (
	"image"
	"log"
	"sort"

	"gocv.io/x/gocv"

	"brick-finder/pkg/geometry"
)

// Params controls candidate extraction. The caps bound per-frame cost only.
type Params struct {
	EdgeThreshold  int     // Canny low threshold; high is 2x low
	MinArea        float64 // Contour area bounds in square pixels
	MaxArea        float64
	MinPerimeter   float64 // Contour perimeter floor in pixels
	MinVertices    int     // Polygon approximation vertex bounds
	MaxVertices    int
	AspectMin      float64 // Bounding-box aspect ratio bounds
	AspectMax      float64
	MinSolidity    float64 // Contour area / bounding-box area floor
	MinConvexity   float64 // Contour area / convex-hull area floor
	ApproxEpsilon  float64 // Approximation tolerance as a fraction of perimeter
	CleanupDensity float64 // Edge density above which morphological closing runs
	MaxCandidates  int     // Contours ranked by area before filtering
	MaxAccepted    int     // Accepted candidates per frame
}

// DefaultParams returns extraction parameters tuned for bricks at webcam
// distance on a plain background.
func DefaultParams() Params {
	return Params{
		EdgeThreshold:  50,
		MinArea:        400,
		MaxArea:        40000,
		MinPerimeter:   50,
		MinVertices:    4,
		MaxVertices:    12,
		AspectMin:      0.3,
		AspectMax:      5.0,
		MinSolidity:    0.5,
		MinConvexity:   0.8,
		ApproxEpsilon:  0.02,
		CleanupDensity: 0.10,
		MaxCandidates:  100,
		MaxAccepted:    50,
	}
}

// Candidate is a geometric region proposed as possibly containing a brick.
type Candidate struct {
	Contour   []geometry.PointInt // Contour points in pixel coordinates
	Box       geometry.RectInt    // Axis-aligned bounding box
	Area      float64             // Contour area in square pixels
	Perimeter float64             // Contour perimeter in pixels
	Vertices  int                 // Polygon approximation vertex count
	Solidity  float64             // Area / bounding-box area
	Convexity float64             // Area / convex-hull area
}

// HitTest returns true if the point (x, y) lies within the candidate contour.
func (c Candidate) HitTest(x, y float64) bool {
	if len(c.Contour) < 3 {
		return c.Box.Contains(geometry.PointInt{X: int(x), Y: int(y)})
	}
	poly := make([]geometry.Point2D, len(c.Contour))
	for i, p := range c.Contour {
		poly[i] = p.ToFloat()
	}
	return geometry.PointInPolygon(geometry.Point2D{X: x, Y: y}, poly)
}

// Finder extracts candidate regions from frames.
type Finder struct {
	params Params
}

// NewFinder creates a finder with the given parameters.
func NewFinder(params Params) *Finder {
	return &Finder{params: params}
}

// SetParams replaces the extraction parameters.
func (f *Finder) SetParams(params Params) {
	f.params = params
}

// FindCandidates extracts brick-like contours from a BGR frame.
// A failure while analyzing one contour rejects that contour only;
// the rest of the frame is still processed.
func (f *Finder) FindCandidates(frame gocv.Mat) []Candidate {
	if frame.Empty() {
		return nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	// Small blur kernel: enough to suppress sensor noise without rounding
	// off brick corners.
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	low := float32(f.params.EdgeThreshold)
	gocv.Canny(blurred, &edges, low, low*2)

	// Close small gaps only when the edge map is noisy; a clean map
	// doesn't need the extra pass.
	total := edges.Rows() * edges.Cols()
	if total > 0 {
		density := float64(gocv.CountNonZero(edges)) / float64(total)
		if density > f.params.CleanupDensity {
			kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
			gocv.MorphologyEx(edges, &edges, gocv.MorphClose, kernel)
			kernel.Close()
		}
	}

	// External contours only: holes inside bricks are irrelevant.
	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return nil
	}

	// Rank by area descending and cap before the per-contour analysis.
	type ranked struct {
		index int
		area  float64
	}
	order := make([]ranked, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		order = append(order, ranked{index: i, area: gocv.ContourArea(contours.At(i))})
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].area > order[j].area
	})
	if len(order) > f.params.MaxCandidates {
		order = order[:f.params.MaxCandidates]
	}

	candidates := make([]Candidate, 0, f.params.MaxAccepted)
	for _, entry := range order {
		cand, ok := f.analyzeContour(contours.At(entry.index), entry.area)
		if !ok {
			continue
		}
		candidates = append(candidates, cand)
		if len(candidates) >= f.params.MaxAccepted {
			break
		}
	}

	if len(candidates) > 0 {
		log.Printf("shape: %d candidate regions from %d contours", len(candidates), contours.Size())
	}
	return candidates
}

// analyzeContour applies the brick-like acceptance tests to one contour.
// Every test must hold; any degenerate measurement rejects the contour.
func (f *Finder) analyzeContour(contour gocv.PointVector, area float64) (Candidate, bool) {
	if area < f.params.MinArea || area > f.params.MaxArea {
		return Candidate{}, false
	}

	perimeter := gocv.ArcLength(contour, true)
	if perimeter < f.params.MinPerimeter {
		return Candidate{}, false
	}

	// Bricks read as simple polygons: roughly rectangular, with a few
	// extra vertices allowed for visible studs.
	approx := gocv.ApproxPolyDP(contour, f.params.ApproxEpsilon*perimeter, true)
	vertices := approx.Size()
	approx.Close()
	if vertices < f.params.MinVertices || vertices > f.params.MaxVertices {
		return Candidate{}, false
	}

	rect := gocv.BoundingRect(contour)
	box := geometry.RectInt{
		X:      rect.Min.X,
		Y:      rect.Min.Y,
		Width:  rect.Dx(),
		Height: rect.Dy(),
	}
	if box.Width <= 0 || box.Height <= 0 {
		return Candidate{}, false
	}

	aspect := box.AspectRatio()
	if aspect < f.params.AspectMin || aspect > f.params.AspectMax {
		return Candidate{}, false
	}

	solidity := area / float64(box.Area())
	if solidity < f.params.MinSolidity {
		return Candidate{}, false
	}

	points := contour.ToPoints()
	contourPts := make([]geometry.PointInt, len(points))
	hullInput := make([]geometry.Point2D, len(points))
	for i, p := range points {
		contourPts[i] = geometry.PointInt{X: p.X, Y: p.Y}
		hullInput[i] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
	}

	hull := geometry.ConvexHull(hullInput)
	hullArea := geometry.PolygonArea(hull)
	if hullArea <= 0 {
		return Candidate{}, false
	}
	convexity := area / hullArea
	if convexity < f.params.MinConvexity {
		return Candidate{}, false
	}

	return Candidate{
		Contour:   contourPts,
		Box:       box,
		Area:      area,
		Perimeter: perimeter,
		Vertices:  vertices,
		Solidity:  solidity,
		Convexity: convexity,
	}, true
}
