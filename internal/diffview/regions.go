package diffview

// RegionMergeSlack is the maximum gap, in lines, between an accumulated
// region's end and a new context window's start for the two to be merged
// into one region instead of starting a new one. The value 2 is an
// empirically chosen display constant; tune it here, do not re-derive it.
const RegionMergeSlack = 2

// Region is a half-open [Start, End) index range over a diff-line sequence.
type Region struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ChangedRegions computes the context-expanded windows around every
// non-unchanged line. Windows are clipped to [0, len(lines)] and merged
// when a new window starts within RegionMergeSlack lines of the previous
// region's end. Indices are processed ascending, so the result is sorted
// and non-overlapping.
func ChangedRegions(lines []Line, contextSize int) []Region {
	if contextSize < 0 {
		contextSize = 0
	}

	var regions []Region
	for i, line := range lines {
		if line.Kind == Unchanged {
			continue
		}

		start := i - contextSize
		if start < 0 {
			start = 0
		}
		end := i + contextSize + 1
		if end > len(lines) {
			end = len(lines)
		}

		if n := len(regions); n > 0 && start <= regions[n-1].End+RegionMergeSlack {
			if end > regions[n-1].End {
				regions[n-1].End = end
			}
			continue
		}
		regions = append(regions, Region{Start: start, End: end})
	}
	return regions
}
