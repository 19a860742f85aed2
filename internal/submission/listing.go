// Package submission implements the filtering and sorting behind the
// submission list view: name search, latest-per-student collapsing and
// stable ordering with explicit placement of ungraded work.
package submission

import (
	"sort"
	"strings"
	"time"
)

// Entry is one row of the submission list.
type Entry struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Grade       *float64  `json:"grade"`
	CreatedAt   time.Time `json:"created_at"`
}

// SortKey selects the column the list is ordered by.
type SortKey string

const (
	SortByName    SortKey = "name"
	SortByGrade   SortKey = "grade"
	SortByCreated SortKey = "created_at"
)

// ListOptions are the query parameters of the submission list endpoint.
type ListOptions struct {
	Query      string
	LatestOnly bool
	SortBy     SortKey
	Ascending  bool
}

// List filters and sorts the entries. The input is not modified. Ungraded
// submissions sort after graded ones regardless of direction, so they never
// hide the grade ordering.
func List(entries []Entry, opts ListOptions) []Entry {
	out := make([]Entry, 0, len(entries))

	query := strings.ToLower(strings.TrimSpace(opts.Query))
	for _, e := range entries {
		if query != "" && !strings.Contains(strings.ToLower(e.StudentName), query) {
			continue
		}
		out = append(out, e)
	}

	if opts.LatestOnly {
		out = latestPerStudent(out)
	}

	sort.SliceStable(out, func(i, j int) bool {
		less, equal := compare(out[i], out[j], opts.SortBy)
		if equal {
			return false
		}
		if opts.Ascending {
			return less
		}
		return !less
	})

	// Nil grades go last in both directions.
	if opts.SortBy == SortByGrade {
		graded := make([]Entry, 0, len(out))
		ungraded := make([]Entry, 0)
		for _, e := range out {
			if e.Grade == nil {
				ungraded = append(ungraded, e)
			} else {
				graded = append(graded, e)
			}
		}
		out = append(graded, ungraded...)
	}

	return out
}

// compare reports whether a sorts before b on the given key, and whether
// they are equal on it. Ties fall back to student name.
func compare(a, b Entry, key SortKey) (less, equal bool) {
	switch key {
	case SortByGrade:
		switch {
		case a.Grade == nil && b.Grade == nil:
		case a.Grade == nil || b.Grade == nil:
			// Graded before ungraded keeps the comparison transitive; the
			// final nil-last placement happens after sorting.
			return a.Grade != nil, false
		case *a.Grade != *b.Grade:
			return *a.Grade < *b.Grade, false
		}
	case SortByCreated:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt), false
		}
	}

	an := strings.ToLower(a.StudentName)
	bn := strings.ToLower(b.StudentName)
	if an != bn {
		return an < bn, false
	}
	return false, true
}

// latestPerStudent keeps only the newest entry per student, preserving the
// original relative order of the survivors.
func latestPerStudent(entries []Entry) []Entry {
	newest := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		if t, ok := newest[e.StudentID]; !ok || e.CreatedAt.After(t) {
			newest[e.StudentID] = e.CreatedAt
		}
	}

	out := make([]Entry, 0, len(entries))
	seen := make(map[string]bool, len(newest))
	for _, e := range entries {
		if seen[e.StudentID] || !e.CreatedAt.Equal(newest[e.StudentID]) {
			continue
		}
		seen[e.StudentID] = true
		out = append(out, e)
	}
	return out
}
