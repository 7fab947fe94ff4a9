package token

import (
	"sort"
	"unicode/utf8"
)

// Lines maps byte offsets within a source text to line and column numbers.
type Lines struct {
	text   string
	starts []int
}

// NewLines indexes the line starts of text. Lines end at "\n"; a "\r"
// before it belongs to the line it ends.
func NewLines(text string) *Lines {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Lines{text: text, starts: starts}
}

// Position returns the 1-based line and 0-based rune column of offset.
// Offsets past the end of the text are clamped to it.
func (l *Lines) Position(offset int) (line, column int) {
	if offset > len(l.text) {
		offset = len(l.text)
	}
	if offset < 0 {
		offset = 0
	}
	i := sort.Search(len(l.starts), func(i int) bool {
		return l.starts[i] > offset
	}) - 1
	return i + 1, utf8.RuneCountInString(l.text[l.starts[i]:offset])
}

// Line returns the text of the 1-based line n, without its terminator.
func (l *Lines) Line(n int) string {
	if n < 1 || n > len(l.starts) {
		return ""
	}
	start := l.starts[n-1]
	end := len(l.text)
	if n < len(l.starts) {
		end = l.starts[n] - 1
	}
	if end > start && l.text[end-1] == '\r' {
		end--
	}
	return l.text[start:end]
}

// Count returns the number of lines.
func (l *Lines) Count() int {
	return len(l.starts)
}
