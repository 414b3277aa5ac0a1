package progress

import (
	"sort"

	courseModels "lms/models/course"
	"lms/services/apperr"
)

// MergeSegments collapses overlapping watched intervals into a sorted,
// pairwise-disjoint list. Zero-length segments are absorbed. The function is
// pure and idempotent: merging an already-merged list returns it unchanged.
func MergeSegments(segments []courseModels.Segment) []courseModels.Segment {
	if len(segments) == 0 {
		return []courseModels.Segment{}
	}

	sorted := make([]courseModels.Segment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	merged := []courseModels.Segment{sorted[0]}

	for _, current := range sorted[1:] {
		last := &merged[len(merged)-1]

		if current[0] <= last[1] {
			// Overlapping or touching, extend the open interval
			if current[1] > last[1] {
				last[1] = current[1]
			}
		} else {
			merged = append(merged, current)
		}
	}

	return merged
}

// TotalWatchTime is the cumulative unique watch time over the merged list
func TotalWatchTime(segments []courseModels.Segment) float64 {
	total := 0.0
	for _, s := range MergeSegments(segments) {
		total += s[1] - s[0]
	}
	return total
}

// ValidateSegment rejects malformed intervals before any write
func ValidateSegment(s courseModels.Segment) error {
	if s[0] < 0 {
		return apperr.Validationf("segment start cannot be negative")
	}
	if s[0] > s[1] {
		return apperr.Validationf("segment start cannot exceed segment end")
	}
	return nil
}
