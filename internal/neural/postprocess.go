package neural

import (
	"fmt"
	"strings"

	"brick-finder/internal/detect"
	"brick-finder/pkg/geometry"
)

// boxFields is the number of geometry values preceding the class scores in
// each output row: center x, center y, width, height.
const boxFields = 4

// decodeRows converts raw network output rows into detection results.
// Each row holds (cx, cy, w, h) in model input coordinates followed by one
// score per class. Rows below the confidence threshold or outside the
// allow-list are dropped; coordinates are scaled back to frame space.
func decodeRows(rows [][]float32, classNames []string, threshold float64,
	allow map[string]struct{}, scaleX, scaleY float64) []detect.Result {

	var results []detect.Result
	for _, row := range rows {
		if len(row) <= boxFields {
			continue
		}

		classID, score := bestClass(row[boxFields:])
		if score < threshold {
			continue
		}

		name := className(classNames, classID)
		if !allowed(name, allow) {
			continue
		}

		cx := float64(row[0]) * scaleX
		cy := float64(row[1]) * scaleY
		w := float64(row[2]) * scaleX
		h := float64(row[3]) * scaleY
		box := geometry.RectInt{
			X:      int(cx - w/2),
			Y:      int(cy - h/2),
			Width:  int(w),
			Height: int(h),
		}

		result, err := detect.NewResult("", score, box)
		if err != nil {
			// A malformed score drops this row only.
			continue
		}
		result.ClassName = name
		results = append(results, result)
	}
	return results
}

// bestClass returns the index and value of the highest class score.
func bestClass(scores []float32) (int, float64) {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best, float64(scores[best])
}

// className maps a class index to its name, with a generic fallback when the
// model ships no labels.
func className(names []string, id int) string {
	if id >= 0 && id < len(names) {
		return names[id]
	}
	return fmt.Sprintf("class %d", id)
}

// allowed applies the allow-list: nil means accept all; otherwise the
// lowercased class name must match a token exactly or contain one as a
// substring.
func allowed(name string, allow map[string]struct{}) bool {
	if len(allow) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	if _, ok := allow[lower]; ok {
		return true
	}
	for token := range allow {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// normalizeAllowList lowercases and trims tokens, dropping empties.
// Returns nil when nothing remains, which means "accept all".
func normalizeAllowList(tokens []string) map[string]struct{} {
	allow := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		t := strings.ToLower(strings.TrimSpace(token))
		if t != "" {
			allow[t] = struct{}{}
		}
	}
	if len(allow) == 0 {
		return nil
	}
	return allow
}
