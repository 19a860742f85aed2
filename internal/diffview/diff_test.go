package diffview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reconstruct joins the lines of the given kinds back into a text.
func reconstruct(lines []Line, keep ...Kind) string {
	kept := make(map[Kind]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}

	var parts []string
	for _, line := range lines {
		if kept[line.Kind] {
			parts = append(parts, line.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestLines(t *testing.T) {
	tests := []struct {
		name     string
		original string
		revised  string
		expected []Line
	}{
		{
			name:     "identical inputs",
			original: "a\nb",
			revised:  "a\nb",
			expected: []Line{
				{Text: "a", Kind: Unchanged},
				{Text: "b", Kind: Unchanged},
			},
		},
		{
			name:     "single line replaced",
			original: "a\nb\nc",
			revised:  "a\nx\nc",
			expected: []Line{
				{Text: "a", Kind: Unchanged},
				{Text: "b", Kind: Removed},
				{Text: "x", Kind: Added},
				{Text: "c", Kind: Unchanged},
			},
		},
		{
			name:     "pure insertion",
			original: "a\nc",
			revised:  "a\nb\nc",
			expected: []Line{
				{Text: "a", Kind: Unchanged},
				{Text: "b", Kind: Added},
				{Text: "c", Kind: Unchanged},
			},
		},
		{
			name:     "pure deletion",
			original: "a\nb\nc",
			revised:  "a\nc",
			expected: []Line{
				{Text: "a", Kind: Unchanged},
				{Text: "b", Kind: Removed},
				{Text: "c", Kind: Unchanged},
			},
		},
		{
			name:     "empty original",
			original: "",
			revised:  "a",
			expected: []Line{
				{Text: "", Kind: Removed},
				{Text: "a", Kind: Added},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.original, tt.revised)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLinesRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		original string
		revised  string
	}{
		{name: "replacement", original: "a\nb\nc", revised: "a\nx\nc"},
		{name: "disjoint texts", original: "one\ntwo", revised: "three\nfour\nfive"},
		{name: "trailing newline difference", original: "a\nb\n", revised: "a\nb"},
		{name: "blank lines around deletion", original: "a\n\nb\nc", revised: "a\n\nc"},
		{name: "both empty", original: "", revised: ""},
		{
			name:     "interleaved edits",
			original: "func main() {\n\tx := 1\n\treturn\n}",
			revised:  "func main() {\n\tx := 2\n\ty := 3\n\treturn\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Lines(tt.original, tt.revised)

			assert.Equal(t, tt.original, reconstruct(lines, Removed, Unchanged))
			assert.Equal(t, tt.revised, reconstruct(lines, Added, Unchanged))
		})
	}
}

func TestLinesMergesBlankArtifacts(t *testing.T) {
	// A removed blank immediately followed by an added blank collapses into
	// one unchanged blank so no spurious change renders between a deletion
	// and its context.
	lines := mergeBlankArtifacts([]Line{
		{Text: "a", Kind: Unchanged},
		{Text: "", Kind: Removed},
		{Text: "", Kind: Added},
		{Text: "b", Kind: Unchanged},
	})

	assert.Equal(t, []Line{
		{Text: "a", Kind: Unchanged},
		{Text: "", Kind: Unchanged},
		{Text: "b", Kind: Unchanged},
	}, lines)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("a\nb\nc", "a\nb\nc"), 1e-12)
	assert.InDelta(t, 0.0, Similarity("a\nb", "x\ny"), 1e-12)

	partial := Similarity("a\nb\nc\nd", "a\nb\nx\nd")
	assert.Greater(t, partial, 0.5)
	assert.Less(t, partial, 1.0)
}

func TestKindMarshalText(t *testing.T) {
	for kind, expected := range map[Kind]string{
		Unchanged: "unchanged",
		Added:     "added",
		Removed:   "removed",
	} {
		got, err := kind.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, expected, string(got))
	}
}
