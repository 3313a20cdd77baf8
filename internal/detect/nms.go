package detect

import "sort"

// SuppressOverlaps applies greedy non-maximum suppression: detections are
// ranked by confidence and a detection is kept only if its IoU with every
// already-kept detection stays at or below iouThreshold. The sort is stable,
// so confidence ties keep their first-seen order. maxKeep caps the output;
// zero or negative means unlimited.
//
// Running suppression on an already-suppressed list returns it unchanged.
func SuppressOverlaps(results []Result, iouThreshold float64, maxKeep int) []Result {
	if len(results) == 0 {
		return nil
	}

	ranked := make([]Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	kept := make([]Result, 0, len(ranked))
	for _, candidate := range ranked {
		overlaps := false
		for _, existing := range kept {
			if candidate.Box.IoU(existing.Box) > iouThreshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, candidate)
			if maxKeep > 0 && len(kept) >= maxKeep {
				break
			}
		}
	}

	return kept
}
