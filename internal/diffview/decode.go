package diffview

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrNotText is returned when raw bytes cannot be decoded as text. Handlers
// match on it to answer "cannot display this file" instead of rendering
// garbage.
var ErrNotText = errors.New("diffview: content is not decodable text")

// LargeFileLineLimit is the line count above which the per-rune whitespace
// rendering pass is skipped. This bounds the cost of very large files; the
// diff itself is unaffected.
const LargeFileLineLimit = 5000

// Decode validates raw file content as displayable text. Binary content,
// recognized by NUL bytes or invalid UTF-8, fails fast with ErrNotText.
func Decode(raw []byte) (string, error) {
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", ErrNotText
	}
	if !utf8.Valid(raw) {
		return "", ErrNotText
	}
	return string(raw), nil
}

// VisualizeWhitespace returns a copy of the diff with spaces and tabs made
// visible, the way the review pane renders them. Above LargeFileLineLimit
// the input is returned as-is.
func VisualizeWhitespace(lines []Line) []Line {
	if len(lines) > LargeFileLineLimit {
		return lines
	}

	replacer := strings.NewReplacer(" ", "·", "\t", "→")
	out := make([]Line, len(lines))
	for i, line := range lines {
		out[i] = Line{Text: replacer.Replace(line.Text), Kind: line.Kind}
	}
	return out
}
