package charclass

import (
	"errors"
	"regexp"
	"testing"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type matchRow struct {
	Input    rune
	Expected bool
}

func runRuneMatchTests(t *testing.T, m Matcher, data []matchRow) {
	t.Helper()
	for i, row := range data {
		actual := m.Match(row.Input)
		if row.Expected != actual {
			t.Errorf("%s/%03d: %q: expected %v, got %v", t.Name(), i, row.Input, row.Expected, actual)
		}
	}
}

func runASCIITests(t *testing.T, m Matcher, expected string) {
	t.Helper()
	actual := string(Runes(m, 0, 0x7f, nil))
	if actual == expected {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes([]rune(expected), []rune(actual), false)
	pretty := dmp.DiffPrettyText(diffs)
	nl := regexp.MustCompile(`(?m)^`)
	pretty = nl.ReplaceAllLiteralString(pretty, "\t")
	t.Errorf("%s: wrong output:\n%s", t.Name(), pretty)
}

func TestAll_Match(t *testing.T) {
	runRuneMatchTests(t, All(), []matchRow{
		{'0', true},
		{'A', true},
		{' ', true},
		{0x00, true},
		{'λ', true},
		{unicode.MaxRune, true},
	})
}

func TestNone_Match(t *testing.T) {
	runRuneMatchTests(t, None(), []matchRow{
		{'0', false},
		{'A', false},
		{0x00, false},
		{'λ', false},
	})
}

func TestNegate_Match(t *testing.T) {
	runRuneMatchTests(t, Not(All()), []matchRow{
		{'0', false},
		{'λ', false},
	})
	runRuneMatchTests(t, Not(None()), []matchRow{
		{'0', true},
		{'λ', true},
	})
	runRuneMatchTests(t, Not(Set('a', 'b')).Optimize(), []matchRow{
		{'a', false},
		{'b', false},
		{'c', true},
		{0x00, true},
		{unicode.MaxRune, true},
	})
}

func TestIntersection_Match(t *testing.T) {
	runRuneMatchTests(t, And(), []matchRow{
		{0x00, true},
		{'x', true},
	})
	runRuneMatchTests(t, And(All(), None()), []matchRow{
		{0x00, false},
		{'x', false},
	})
	runRuneMatchTests(t, And(Ranges(Range{'a', 'z'}), Not(Set('q'))), []matchRow{
		{'a', true},
		{'q', false},
		{'z', true},
		{'A', false},
	})
}

func TestUnion_Match(t *testing.T) {
	runRuneMatchTests(t, Or(), []matchRow{
		{0x00, false},
		{'x', false},
	})
	runRuneMatchTests(t, Or(None(), All()), []matchRow{
		{0x00, true},
		{'x', true},
	})
}

func TestRange_Match(t *testing.T) {
	m := Ranges(Range{'0', '9'}, Range{'A', 'Z'}, Range{'a', 'z'})
	runRuneMatchTests(t, m, []matchRow{
		{'0', true},
		{'7', true},
		{'9', true},
		{'A', true},
		{'Z', true},
		{'a', true},
		{'z', true},
		{' ', false},
		{'@', false},
		{'`', false},
		{'{', false},
	})
	runASCIITests(t, m, "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")
}

func TestCoalesceRanges(t *testing.T) {
	type testrow struct {
		Input    []Range
		Expected string
	}

	data := []testrow{
		{nil, "[]"},
		{[]Range{{'b', 'a'}}, "[]"},
		{[]Range{{'a', 'c'}, {'d', 'f'}}, "[a-f]"},
		{[]Range{{'d', 'f'}, {'a', 'e'}}, "[a-f]"},
		{[]Range{{'a', 'z'}, {'c', 'd'}}, "[a-z]"},
		{[]Range{{'x', 'y'}, {'a', 'a'}}, "[axy]"},
		{[]Range{{'-', '-'}, {']', ']'}}, `[\-\]]`},
	}

	for i, row := range data {
		actual := makeRange(row.Input).String()
		if actual != row.Expected {
			t.Errorf("%s/%03d: expected %q, got %q", t.Name(), i, row.Expected, actual)
		}
	}
}

func TestMatcher_String(t *testing.T) {
	type testrow struct {
		Matcher  Matcher
		Expected string
	}

	data := []testrow{
		{All(), "."},
		{None(), "!."},
		{Not(All()), "!."},
		{Exactly('x'), "[x]"},
		{Exactly('\n'), `[\n]`},
		{Set('u', 'a', 'e', 'o', 'i'), "[aeiou]"},
		{Not(Set('a', 'b')), "[^ab]"},
		{Or(Exactly('a'), Ranges(Range{'b', 'd'})), "[a-d]"},
		{Or(Exactly('a'), Unicode("Greek", unicode.Greek)), `([a]|\p{Greek})`},
		{And(Exactly('a'), All()), "([a]&.)"},
		{And(Exactly('a'), All()).Optimize(), "[a]"},
	}

	for i, row := range data {
		actual := row.Matcher.String()
		if actual != row.Expected {
			t.Errorf("%s/%03d: expected %q, got %q", t.Name(), i, row.Expected, actual)
		}
	}
}

func TestParse(t *testing.T) {
	type testrow struct {
		Input    string
		Expected string
	}

	data := []testrow{
		{".", "."},
		{"x", "[x]"},
		{"[a-z_]", "[_a-z]"},
		{`[\d_]`, "[0-9_]"},
		{`\w`, "[0-9A-Z_a-z]"},
		{"[]a]", `[\]a]`},
		{"[a-]", `[\-a]`},
		{`[\x41-\x43]`, "[A-C]"},
		{`\p{Lu}`, `\p{Lu}`},
	}

	for i, row := range data {
		m, err := Parse(row.Input)
		if err != nil {
			t.Errorf("%s/%03d: %q: unexpected error: %v", t.Name(), i, row.Input, err)
			continue
		}
		actual := m.String()
		if actual != row.Expected {
			t.Errorf("%s/%03d: %q: expected %q, got %q", t.Name(), i, row.Input, row.Expected, actual)
		}
	}
}

func TestParse_Match(t *testing.T) {
	runASCIITests(t, MustParse(`[\d_]`), "0123456789_")
	runASCIITests(t, MustParse(`[\p{Lu}\d]`), "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	runRuneMatchTests(t, MustParse("[^0-9]"), []matchRow{
		{'0', false},
		{'9', false},
		{'a', true},
		{'λ', true},
	})
	runRuneMatchTests(t, MustParse("[^ab]"), []matchRow{
		{'a', false},
		{'b', false},
		{'c', true},
	})
	runRuneMatchTests(t, MustParse(`\p{Greek}`), []matchRow{
		{'λ', true},
		{'l', false},
	})
}

func TestParse_Errors(t *testing.T) {
	for i, input := range []string{"", "[", "[z-a]", `\p{Nope}`, `\p`, "ab", `\`} {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("%s/%03d: %q: expected error", t.Name(), i, input)
			continue
		}
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("%s/%03d: %q: expected ErrSyntax, got %v", t.Name(), i, input, err)
		}
	}
}
