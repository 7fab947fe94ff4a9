package charclass

import (
	"bytes"
	"fmt"
	"sort"
	"unicode"
)

const maxRune = unicode.MaxRune

type runeSlice []rune

var _ sort.Interface = (runeSlice)(nil)

func (x runeSlice) Len() int           { return len(x) }
func (x runeSlice) Less(i, j int) bool { return x[i] < x[j] }
func (x runeSlice) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }

type rangeSlice []Range

var _ sort.Interface = (rangeSlice)(nil)

func (x rangeSlice) Len() int           { return len(x) }
func (x rangeSlice) Less(i, j int) bool { return x[i].Lo < x[j].Lo }
func (x rangeSlice) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }

func rangesString(rs []Range, negate bool) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	if negate {
		buf.WriteByte('^')
	}
	for _, r := range rs {
		writeClassRune(&buf, r.Lo)
		switch {
		case r.Hi == r.Lo:
			// pass
		case r.Hi == r.Lo+1:
			writeClassRune(&buf, r.Hi)
		default:
			buf.WriteByte('-')
			writeClassRune(&buf, r.Hi)
		}
	}
	buf.WriteByte(']')
	return buf.String()
}

var classEscapes = map[rune]byte{
	'\t': 't',
	'\n': 'n',
	'\r': 'r',
	'\f': 'f',
	'\v': 'v',
	'\\': '\\',
	']':  ']',
	'[':  '[',
	'-':  '-',
	'^':  '^',
}

func writeClassRune(buf *bytes.Buffer, r rune) {
	if ch, found := classEscapes[r]; found {
		buf.WriteByte('\\')
		buf.WriteByte(ch)
		return
	}
	if r < 0x20 || r == 0x7f {
		fmt.Fprintf(buf, `\x%02x`, r)
		return
	}
	if !unicode.IsPrint(r) {
		fmt.Fprintf(buf, `\u%04x`, r)
		return
	}
	buf.WriteRune(r)
}
