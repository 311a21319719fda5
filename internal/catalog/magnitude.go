package catalog

import (
	"fmt"
)

const (
	magnitudeRangeLabelTemplateConstant = "(%.1f, %.1f]"
)

// DefaultMagnitudeBinEdges returns the whole-magnitude bin edges used by the
// distribution summaries.
func DefaultMagnitudeBinEdges() []float64 {
	return []float64{3.0, 4.0, 5.0, 6.0, 7.0, 8.0}
}

// MagnitudeRange is a half-open magnitude interval, exclusive of the lower
// bound and inclusive of the upper bound.
type MagnitudeRange struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Contains reports whether the provided magnitude falls inside the range.
func (magnitudeRange MagnitudeRange) Contains(magnitude float64) bool {
	return magnitude > magnitudeRange.Lower && magnitude <= magnitudeRange.Upper
}

// Label renders the interval notation used in distribution tables.
func (magnitudeRange MagnitudeRange) Label() string {
	return fmt.Sprintf(magnitudeRangeLabelTemplateConstant, magnitudeRange.Lower, magnitudeRange.Upper)
}

// MagnitudeRangesFromEdges converts ascending bin edges into consecutive
// magnitude ranges.
func MagnitudeRangesFromEdges(binEdges []float64) []MagnitudeRange {
	if len(binEdges) < 2 {
		return nil
	}

	magnitudeRanges := make([]MagnitudeRange, 0, len(binEdges)-1)
	for edgeIndex := 0; edgeIndex < len(binEdges)-1; edgeIndex++ {
		magnitudeRanges = append(magnitudeRanges, MagnitudeRange{Lower: binEdges[edgeIndex], Upper: binEdges[edgeIndex+1]})
	}

	return magnitudeRanges
}

// CountEventsByRange tallies events per magnitude range.
func CountEventsByRange(events []Event, magnitudeRanges []MagnitudeRange) []int {
	rangeCounts := make([]int, len(magnitudeRanges))
	for _, event := range events {
		for rangeIndex, magnitudeRange := range magnitudeRanges {
			if magnitudeRange.Contains(event.Magnitude) {
				rangeCounts[rangeIndex]++
				break
			}
		}
	}
	return rangeCounts
}
