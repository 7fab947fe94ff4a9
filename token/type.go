// Package token defines the tokens and trivia shared by lexers, grammars, and
// syntax trees.
package token

// Type identifies the kind of a token. Lexers and grammars declare their own
// types; Generic holds the ones every lexer needs.
type Type interface {
	Name() string
}

// Generic is the set of token types understood by every lexer.
type Generic uint8

const (
	Identifier Generic = iota
	Literal
	Constant
	Comment
	EOL
	EOF
	UnknownChar
)

var genericNames = [...]string{
	Identifier:  "IDENTIFIER",
	Literal:     "LITERAL",
	Constant:    "CONSTANT",
	Comment:     "COMMENT",
	EOL:         "EOL",
	EOF:         "EOF",
	UnknownChar: "UNKNOWN_CHAR",
}

// Name returns the upper-case name of the type.
func (g Generic) Name() string {
	if int(g) < len(genericNames) {
		return genericNames[g]
	}
	return "GENERIC?"
}

func (g Generic) String() string { return g.Name() }

// Named is a token type identified only by its name. Lexers and grammars
// loaded from files use it.
type Named string

func (n Named) Name() string   { return string(n) }
func (n Named) String() string { return string(n) }

// Lookup returns the Generic type with the given name, or a Named type.
func Lookup(name string) Type {
	for i, n := range genericNames {
		if n == name {
			return Generic(i)
		}
	}
	return Named(name)
}
