// Package grammarfile loads grammars written as EBNF productions and
// described by a YAML manifest.
//
// A manifest names the EBNF file (or carries it inline), the root rule, the
// mode, and the skip policies of rules. Lexerful manifests also configure
// the lexer channels:
//
//	grammar: expr.ebnf
//	root: Expr
//	mode: lexerful
//	skipIfOneChild: [Term]
//	tokens:
//	  number: CONSTANT
//	lexer:
//	  failIfNoChannel: true
//	  channels:
//	    - {kind: whitespace, pattern: '\s+'}
//	    - {kind: regexp, type: CONSTANT, pattern: '[0-9]+'}
//	    - {kind: punctuators, values: ["+", "*", "(", ")"]}
package grammarfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/chronos-tachyon/go-pegtree/charclass"
	"github.com/chronos-tachyon/go-pegtree/lexer"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// ErrInvalidManifest is wrapped by every error about manifest contents.
var ErrInvalidManifest = errors.New("invalid grammar manifest")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidManifest, fmt.Sprintf(format, args...))
}

const (
	modeLexerless = "lexerless"
	modeLexerful  = "lexerful"
)

// Manifest describes a grammar file.
type Manifest struct {
	// Grammar is the path of the EBNF file, relative to the manifest.
	Grammar string `yaml:"grammar,omitempty"`

	// Source is the EBNF text itself, used when Grammar is empty.
	Source string `yaml:"source,omitempty"`

	// Root is the start rule. It defaults to the first production.
	Root string `yaml:"root,omitempty"`

	// Mode is "lexerless" (the default) or "lexerful".
	Mode string `yaml:"mode,omitempty"`

	Skip           []string `yaml:"skip,omitempty"`
	SkipIfOneChild []string `yaml:"skipIfOneChild,omitempty"`

	// Tokens maps lexical production names to token type names. Lexerful
	// grammars use it to alias undefined names to token types.
	Tokens map[string]string `yaml:"tokens,omitempty"`

	// Patterns defines lexical productions as regular expressions.
	Patterns map[string]string `yaml:"patterns,omitempty"`

	// Spacing and Comment list lexical productions that match trivia
	// instead of tokens.
	Spacing []string `yaml:"spacing,omitempty"`
	Comment []string `yaml:"comment,omitempty"`

	Lexer *LexerConfig `yaml:"lexer,omitempty"`
}

// LexerConfig configures the lexer of a lexerful grammar.
type LexerConfig struct {
	FailIfNoChannel bool            `yaml:"failIfNoChannel,omitempty"`
	Channels        []ChannelConfig `yaml:"channels"`
}

// ChannelConfig describes one lexer channel. Kind selects the channel and
// decides which other fields are used:
//
//	whitespace   Pattern
//	comment      Pattern
//	regexp       Type, Pattern
//	keywords     Type, Pattern, Keywords, CaseSensitive
//	punctuators  Values
//	class        Type, Class
//	unknown      (none)
type ChannelConfig struct {
	Kind          string   `yaml:"kind"`
	Type          string   `yaml:"type,omitempty"`
	Pattern       string   `yaml:"pattern,omitempty"`
	Class         string   `yaml:"class,omitempty"`
	Values        []string `yaml:"values,omitempty"`
	Keywords      []string `yaml:"keywords,omitempty"`
	CaseSensitive bool     `yaml:"caseSensitive,omitempty"`
}

// ParseManifest decodes a YAML manifest. Unknown fields are errors.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	d := yaml.NewDecoder(bytes.NewReader(data))
	d.KnownFields(true)
	if err := d.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	switch m.Mode {
	case "":
		m.Mode = modeLexerless
	case modeLexerless, modeLexerful:
	default:
		return invalid("mode %q is neither %q nor %q", m.Mode, modeLexerless, modeLexerful)
	}
	if m.Grammar == "" && m.Source == "" {
		return invalid("one of grammar or source is required")
	}
	if m.Grammar != "" && m.Source != "" {
		return invalid("grammar and source are mutually exclusive")
	}
	if m.Lexer != nil && m.Mode != modeLexerful {
		return invalid("lexer is only used by lexerful grammars")
	}
	if m.Mode == modeLexerful && (len(m.Patterns) != 0 || len(m.Spacing) != 0 || len(m.Comment) != 0) {
		return invalid("patterns, spacing, and comment are only used by lexerless grammars")
	}
	for _, name := range m.Spacing {
		if slices.Contains(m.Comment, name) {
			return invalid("%q is listed as both spacing and comment", name)
		}
	}
	return nil
}

// Lexerful returns true iff the manifest describes a lexerful grammar.
func (m *Manifest) Lexerful() bool {
	return m.Mode == modeLexerful
}

func (c *LexerConfig) build() ([]lexer.Option, error) {
	channels := make([]lexer.Channel, 0, len(c.Channels))
	for i, cc := range c.Channels {
		ch, err := cc.build()
		if err != nil {
			return nil, invalid("lexer channel %d (%s): %v", i, cc.Kind, err)
		}
		channels = append(channels, ch)
	}
	return []lexer.Option{
		lexer.WithChannels(channels...),
		lexer.WithFailIfNoChannel(c.FailIfNoChannel),
	}, nil
}

func (cc *ChannelConfig) tokenType() (token.Type, error) {
	if cc.Type == "" {
		return nil, errors.New("type is required")
	}
	return token.Lookup(cc.Type), nil
}

func (cc *ChannelConfig) build() (lexer.Channel, error) {
	switch cc.Kind {
	case "whitespace":
		return lexer.Whitespace(cc.Pattern)
	case "comment":
		return lexer.Comment(cc.Pattern)
	case "regexp":
		typ, err := cc.tokenType()
		if err != nil {
			return nil, err
		}
		return lexer.Regexp(typ, cc.Pattern)
	case "keywords":
		typ, err := cc.tokenType()
		if err != nil {
			return nil, err
		}
		keywords := make([]token.Type, len(cc.Keywords))
		for i, kw := range cc.Keywords {
			keywords[i] = token.Lookup(kw)
		}
		return lexer.Keywords(cc.Pattern, typ, cc.CaseSensitive, keywords...)
	case "punctuators":
		if len(cc.Values) == 0 {
			return nil, errors.New("values is required")
		}
		return lexer.Punctuators(cc.Values...), nil
	case "class":
		typ, err := cc.tokenType()
		if err != nil {
			return nil, err
		}
		m, err := charclass.Parse(cc.Class)
		if err != nil {
			return nil, err
		}
		return lexer.Class(typ, m), nil
	case "unknown":
		return lexer.UnknownChar(), nil
	default:
		return nil, fmt.Errorf("unknown kind %q", cc.Kind)
	}
}
