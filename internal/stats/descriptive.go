package stats

import (
	"math"
	"sort"
)

// Summary holds the descriptive statistics of one sample set. Mean, Stdev
// and Median are nil when no valid samples exist. Mode lists the most
// frequent value(s); ties are all returned, sorted ascending.
type Summary struct {
	Mean   *float64  `json:"mean"`
	Stdev  *float64  `json:"stdev"`
	Median *float64  `json:"median"`
	Mode   []float64 `json:"mode"`
	Count  int       `json:"count"`
}

// Descriptive computes mean, standard deviation, median and mode over the
// valid samples. Missing samples are excluded; an all-missing input yields
// nil statistics and Count zero.
func Descriptive(samples []Sample) Summary {
	xs := values(samples)
	if len(xs) == 0 {
		return Summary{Mode: []float64{}}
	}

	m := mean(xs)
	return Summary{
		Mean:   ptr(m),
		Stdev:  ptr(stdev(xs, m)),
		Median: ptr(median(xs)),
		Mode:   mode(xs),
		Count:  len(xs),
	}
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, v := range xs {
		s += v
	}
	return s / float64(len(xs))
}

// stdev is the population standard deviation, consistent with the variance
// convention used by the correlation functions.
func stdev(xs []float64, m float64) float64 {
	s := 0.0
	for _, v := range xs {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(xs)))
}

func median(xs []float64) float64 {
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return 0.5 * (cp[mid-1] + cp[mid])
}

func mode(xs []float64) []float64 {
	counts := make(map[float64]int, len(xs))
	best := 0
	for _, v := range xs {
		counts[v]++
		if counts[v] > best {
			best = counts[v]
		}
	}

	out := make([]float64, 0, len(counts))
	for v, n := range counts {
		if n == best {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
