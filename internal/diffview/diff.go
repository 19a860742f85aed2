// Package diffview computes line-oriented diffs between two file versions
// and derives the context-windowed changed regions the review UI renders.
// Diffing happens at line resolution: every distinct line is one token, so
// large files stay cheap and the output reads naturally.
package diffview

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Kind classifies one diff line.
type Kind int

const (
	Unchanged Kind = iota
	Added
	Removed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// MarshalText makes Kind render as its name in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Line is one entry of a diff: the line text and its classification.
type Line struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

// Lines diffs two texts at line granularity. The result preserves both
// inputs exactly: concatenating the removed+unchanged texts reproduces
// original, added+unchanged reproduces revised.
func Lines(original, revised string) []Line {
	a := strings.Split(original, "\n")
	b := strings.Split(revised, "\n")

	matcher := difflib.NewMatcher(a, b)

	var out []Line
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, text := range a[op.I1:op.I2] {
				out = append(out, Line{Text: text, Kind: Unchanged})
			}
		case 'd':
			for _, text := range a[op.I1:op.I2] {
				out = append(out, Line{Text: text, Kind: Removed})
			}
		case 'i':
			for _, text := range b[op.J1:op.J2] {
				out = append(out, Line{Text: text, Kind: Added})
			}
		case 'r':
			for _, text := range a[op.I1:op.I2] {
				out = append(out, Line{Text: text, Kind: Removed})
			}
			for _, text := range b[op.J1:op.J2] {
				out = append(out, Line{Text: text, Kind: Added})
			}
		}
	}

	return mergeBlankArtifacts(out)
}

// mergeBlankArtifacts collapses a removed blank line immediately followed by
// an added blank line into a single unchanged one. The matcher produces
// these pairs around deletions, and they would otherwise render as a
// spurious change between a deletion and its following context. The
// collapse keeps the round-trip property: the blank line stays present on
// both sides.
func mergeBlankArtifacts(lines []Line) []Line {
	out := lines[:0]
	for i := 0; i < len(lines); i++ {
		if i+1 < len(lines) &&
			lines[i].Kind == Removed && lines[i].Text == "" &&
			lines[i+1].Kind == Added && lines[i+1].Text == "" {
			out = append(out, Line{Text: "", Kind: Unchanged})
			i++
			continue
		}
		out = append(out, lines[i])
	}
	return out
}

// Similarity is the ratio of matching lines between the two texts, in
// [0, 1]. It backs the plagiarism comparison view's percentage badge.
func Similarity(original, revised string) float64 {
	a := strings.Split(original, "\n")
	b := strings.Split(revised, "\n")
	return difflib.NewMatcher(a, b).Ratio()
}
