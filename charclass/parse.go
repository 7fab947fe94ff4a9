package charclass

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrSyntax is wrapped by every error returned from Parse.
var ErrSyntax = errors.New("invalid character class")

// Parse reads a character class written in bracket syntax:
//
//   .            any rune
//   [abc]        any of a, b, c
//   [a-z0-9_]    ranges and single runes
//   [^"\\]       negation
//   \p{L}        a Unicode category or script, also allowed inside brackets
//   \d \s \w     ASCII digit, space, and word shorthands
//
// The result has already been optimized.
func Parse(s string) (Matcher, error) {
	p := &classParser{input: s}
	m, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrSyntax, s, err)
	}
	return m.Optimize(), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Matcher {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

var (
	digitRanges = []Range{{'0', '9'}}
	spaceRanges = []Range{{'\t', '\r'}, {' ', ' '}}
	wordRanges  = []Range{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}
)

type classParser struct {
	input string
	pos   int
}

func (p *classParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *classParser) next() rune {
	r, n := utf8.DecodeRuneInString(p.input[p.pos:])
	p.pos += n
	return r
}

func (p *classParser) peek() rune {
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return r
}

func (p *classParser) parse() (Matcher, error) {
	if p.input == "" {
		return nil, errors.New("empty class")
	}
	var m Matcher
	var err error
	switch p.peek() {
	case '.':
		p.next()
		m = All()
	case '[':
		m, err = p.parseBracket()
	case '\\':
		p.next()
		var single rune
		m, single, err = p.parseEscape()
		if err == nil && m == nil {
			m = Exactly(single)
		}
	default:
		m = Exactly(p.next())
	}
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("trailing input at offset %d", p.pos)
	}
	return m, nil
}

func (p *classParser) parseBracket() (Matcher, error) {
	p.next() // '['
	negate := false
	if !p.eof() && p.peek() == '^' {
		p.next()
		negate = true
	}

	var ranges []Range
	var others []Matcher
	first := true
	for {
		if p.eof() {
			return nil, errors.New("missing ']'")
		}
		r := p.next()
		if r == ']' && !first {
			break
		}
		first = false

		lo := r
		if r == '\\' {
			m, single, err := p.parseEscape()
			if err != nil {
				return nil, err
			}
			if m != nil {
				if rs, ok := rangesOf(m); ok {
					ranges = append(ranges, rs...)
				} else {
					others = append(others, m)
				}
				continue
			}
			lo = single
		}

		hi := lo
		if !p.eof() && p.peek() == '-' && p.pos+1 < len(p.input) && p.input[p.pos+1] != ']' {
			p.next() // '-'
			hi = p.next()
			if hi == '\\' {
				m, single, err := p.parseEscape()
				if err != nil {
					return nil, err
				}
				if m != nil {
					return nil, errors.New("class shorthand used as range bound")
				}
				hi = single
			}
			if hi < lo {
				return nil, fmt.Errorf("range %q-%q out of order", lo, hi)
			}
		}
		ranges = append(ranges, Range{lo, hi})
	}

	var m Matcher = makeRange(ranges)
	if len(others) != 0 {
		m = Or(append(others, m)...)
	}
	if negate {
		m = Not(m)
	}
	return m, nil
}

// parseEscape is called after a backslash. It returns either a class (for
// shorthands and \p{...}) or a single rune.
func (p *classParser) parseEscape() (Matcher, rune, error) {
	if p.eof() {
		return nil, 0, errors.New("trailing backslash")
	}
	r := p.next()
	switch r {
	case 'd':
		return Ranges(digitRanges...), 0, nil
	case 's':
		return Ranges(spaceRanges...), 0, nil
	case 'w':
		return Ranges(wordRanges...), 0, nil
	case 'p':
		if p.eof() || p.next() != '{' {
			return nil, 0, errors.New(`expected '{' after \p`)
		}
		end := strings.IndexByte(p.input[p.pos:], '}')
		if end < 0 {
			return nil, 0, errors.New(`missing '}' after \p{`)
		}
		name := p.input[p.pos : p.pos+end]
		p.pos += end + 1
		table, ok := lookupTable(name)
		if !ok {
			return nil, 0, fmt.Errorf("unknown Unicode class %q", name)
		}
		return Unicode(name, table), 0, nil
	case 'x', 'u':
		n := 2
		if r == 'u' {
			n = 4
		}
		if p.pos+n > len(p.input) {
			return nil, 0, fmt.Errorf(`short \%c escape`, r)
		}
		v, err := strconv.ParseUint(p.input[p.pos:p.pos+n], 16, 32)
		if err != nil {
			return nil, 0, err
		}
		p.pos += n
		return nil, rune(v), nil
	case 't':
		return nil, '\t', nil
	case 'n':
		return nil, '\n', nil
	case 'r':
		return nil, '\r', nil
	case 'f':
		return nil, '\f', nil
	case 'v':
		return nil, '\v', nil
	}
	return nil, r, nil
}
