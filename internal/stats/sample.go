// Package stats implements the descriptive and diagnostic statistics used
// by rubric analytics: mean, standard deviation, median, mode, Pearson
// correlation and score normalization. All functions are pure and treat
// missing samples as distinct from zero. Undefined results are returned as
// nil pointers, never NaN.
package stats

import (
	"fmt"
	"strconv"
)

// Sample is a single achieved-point value that may be missing. A category
// that was never filled in for a submission yields a missing sample, which
// is excluded from every computation.
type Sample struct {
	Value float64
	Valid bool
}

// F wraps a present value.
func F(v float64) Sample {
	return Sample{Value: v, Valid: true}
}

// Missing returns an absent sample.
func Missing() Sample {
	return Sample{}
}

// values extracts the present values, preserving order.
func values(samples []Sample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Valid {
			out = append(out, s.Value)
		}
	}
	return out
}

// ptr returns a pointer copy, the representation for nullable results.
func ptr(v float64) *float64 {
	return &v
}

// FormatFixed renders a nullable value with the given number of decimals.
// Nil passes through as the display placeholder instead of panicking or
// producing "NaN".
func FormatFixed(v *float64, decimals int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}

// Normalize maps a raw score onto a 0-100 percentage relative to the
// category bounds. Negative scores are measured against the magnitude of
// minPoints, non-negative scores against maxPoints. A zero-width bound maps
// any nonzero score to 100.
func Normalize(value, minPoints, maxPoints float64) float64 {
	var bound float64
	if value < 0 {
		bound = -minPoints
	} else {
		bound = maxPoints
	}

	if bound == 0 {
		if value == 0 {
			return 0
		}
		return 100
	}

	pct := value / bound * 100
	if pct < 0 {
		pct = -pct
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (s Sample) String() string {
	if !s.Valid {
		return "-"
	}
	return fmt.Sprintf("%g", s.Value)
}
