package stats

import "math"

// Correlation computes the Pearson correlation coefficient over the pairs
// where both series have a value. It returns nil when fewer than 2 complete
// pairs exist or when either series has zero variance, so callers never see
// NaN.
func Correlation(xs, ys []Sample) *float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}

	var px, py []float64
	for i := 0; i < n; i++ {
		if xs[i].Valid && ys[i].Valid {
			px = append(px, xs[i].Value)
			py = append(py, ys[i].Value)
		}
	}

	if len(px) < 2 {
		return nil
	}

	mx := mean(px)
	my := mean(py)

	var cov, vx, vy float64
	for i := range px {
		dx := px[i] - mx
		dy := py[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}

	if vx == 0 || vy == 0 {
		return nil
	}

	return ptr(cov / math.Sqrt(vx*vy))
}

// RIT is the item-total correlation: how well a category's score tracks the
// total score of the same submission.
func RIT(category, total []Sample) *float64 {
	return Correlation(category, total)
}

// RIR is the item-rest correlation. The category's own contribution is
// subtracted from the total before correlating, to avoid the
// self-correlation inflation RIT suffers from.
func RIR(category, total []Sample) *float64 {
	n := len(category)
	if len(total) < n {
		n = len(total)
	}

	rest := make([]Sample, n)
	for i := 0; i < n; i++ {
		if category[i].Valid && total[i].Valid {
			rest[i] = F(total[i].Value - category[i].Value)
		}
	}
	return Correlation(category[:n], rest)
}
