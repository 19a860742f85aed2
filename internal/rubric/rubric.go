// Package rubric models rubric categories and derives the per-category
// item statistics shown on the rubric analytics charts.
package rubric

import (
	"fmt"

	"github.com/te5in/gradecore/internal/stats"
)

// Category is one rubric row: a scored aspect of a submission with its
// point bounds.
type Category struct {
	ID        string  `json:"id"`
	Header    string  `json:"header"`
	MinPoints float64 `json:"min_points"`
	MaxPoints float64 `json:"max_points"`
}

// CategoryStats is the analytics record for one category. RIT and RIR are
// nil when the sample is degenerate (fewer than 2 complete pairs or zero
// variance). MeanPct is the mean normalized against the category bounds.
type CategoryStats struct {
	Category Category      `json:"category"`
	Summary  stats.Summary `json:"summary"`
	RIT      *float64      `json:"rit"`
	RIR      *float64      `json:"rir"`
	MeanPct  *float64      `json:"mean_pct"`
}

// ItemAnalysis computes descriptive statistics, RIT and RIR for every
// category over a grade matrix. Rows are submissions, columns line up with
// the categories; missing cells are categories never filled in. A
// submission's total is the sum of its present cells.
func ItemAnalysis(categories []Category, matrix [][]stats.Sample) ([]CategoryStats, error) {
	for i, row := range matrix {
		if len(row) != len(categories) {
			return nil, fmt.Errorf("rubric: row %d has %d cells, want %d", i, len(row), len(categories))
		}
	}

	totals := rowTotals(matrix)

	out := make([]CategoryStats, len(categories))
	for col, cat := range categories {
		column := make([]stats.Sample, len(matrix))
		for row := range matrix {
			column[row] = matrix[row][col]
		}

		cs := CategoryStats{
			Category: cat,
			Summary:  stats.Descriptive(column),
			RIT:      stats.RIT(column, totals),
			RIR:      stats.RIR(column, totals),
		}
		if cs.Summary.Mean != nil {
			pct := stats.Normalize(*cs.Summary.Mean, cat.MinPoints, cat.MaxPoints)
			cs.MeanPct = &pct
		}
		out[col] = cs
	}
	return out, nil
}

// rowTotals sums the present cells of each row. A row with no grades at all
// has a missing total, so it drops out of every correlation pair.
func rowTotals(matrix [][]stats.Sample) []stats.Sample {
	totals := make([]stats.Sample, len(matrix))
	for i, row := range matrix {
		sum := 0.0
		any := false
		for _, cell := range row {
			if cell.Valid {
				sum += cell.Value
				any = true
			}
		}
		if any {
			totals[i] = stats.F(sum)
		}
	}
	return totals
}
