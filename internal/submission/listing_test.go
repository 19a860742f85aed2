package submission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func grade(v float64) *float64 { return &v }

func at(minute int) time.Time {
	return time.Date(2024, 3, 1, 12, minute, 0, 0, time.UTC)
}

var testEntries = []Entry{
	{ID: "s1", StudentID: "u1", StudentName: "Alice", Grade: grade(7.5), CreatedAt: at(0)},
	{ID: "s2", StudentID: "u2", StudentName: "bob", Grade: nil, CreatedAt: at(1)},
	{ID: "s3", StudentID: "u3", StudentName: "Carol", Grade: grade(4), CreatedAt: at(2)},
	{ID: "s4", StudentID: "u1", StudentName: "Alice", Grade: grade(9), CreatedAt: at(3)},
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestList(t *testing.T) {
	tests := []struct {
		name     string
		opts     ListOptions
		expected []string
	}{
		{
			name:     "sort by name ascending",
			opts:     ListOptions{SortBy: SortByName, Ascending: true},
			expected: []string{"s1", "s4", "s2", "s3"},
		},
		{
			name:     "sort by name descending",
			opts:     ListOptions{SortBy: SortByName, Ascending: false},
			expected: []string{"s3", "s2", "s1", "s4"},
		},
		{
			name:     "sort by grade ascending puts ungraded last",
			opts:     ListOptions{SortBy: SortByGrade, Ascending: true},
			expected: []string{"s3", "s1", "s4", "s2"},
		},
		{
			name:     "sort by grade descending keeps ungraded last",
			opts:     ListOptions{SortBy: SortByGrade, Ascending: false},
			expected: []string{"s4", "s1", "s3", "s2"},
		},
		{
			name:     "sort by created descending",
			opts:     ListOptions{SortBy: SortByCreated, Ascending: false},
			expected: []string{"s4", "s3", "s2", "s1"},
		},
		{
			name:     "query is case insensitive",
			opts:     ListOptions{Query: "ALI", SortBy: SortByCreated, Ascending: true},
			expected: []string{"s1", "s4"},
		},
		{
			name:     "latest only keeps newest per student",
			opts:     ListOptions{LatestOnly: true, SortBy: SortByCreated, Ascending: true},
			expected: []string{"s2", "s3", "s4"},
		},
		{
			name:     "query with no matches",
			opts:     ListOptions{Query: "zzz", SortBy: SortByName, Ascending: true},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := List(testEntries, tt.opts)
			assert.Equal(t, tt.expected, ids(got))
		})
	}
}

func TestListDoesNotModifyInput(t *testing.T) {
	before := ids(testEntries)

	List(testEntries, ListOptions{SortBy: SortByGrade, Ascending: false})

	assert.Equal(t, before, ids(testEntries))
}
