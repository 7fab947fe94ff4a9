package pegvm

import (
	"fmt"
	"sort"
)

// OpCode identifies an instruction.
type OpCode uint8

const (
	OpJump OpCode = iota
	OpCall
	OpRet
	OpChoice
	OpPredicateChoice
	OpCommit
	OpCommitVerify
	OpBacktrack
	OpBackCommit
	OpFailTwice
	OpIgnoreErrors
	OpEnd
	OpLiteral
	OpPattern
	OpClass
	OpAnyChar
	OpEndOfInput
	OpNothing
	OpTokenType
	OpAnyToken
	OpTillNewLine
	numOpCodes
)

// Meta returns the metadata for this opcode.
func (code OpCode) Meta() *OpMeta {
	if code < numOpCodes {
		return &opMeta[code]
	}
	return &OpMeta{
		Code:    code,
		Name:    fmt.Sprintf("OP%02x", uint8(code)),
		Illegal: true,
	}
}

func (code OpCode) String() string {
	return code.Meta().Name
}

// Table identifies which Program table an Op's Arg indexes.
type Table uint8

const (
	TableNone Table = iota
	TableLiteral
	TablePattern
	TableClass
	TableTokenType
)

// Mode restricts an opcode to one kind of input.
type Mode uint8

const (
	// AnyMode opcodes work on both strings and tokens.
	AnyMode Mode = iota

	// CharMode opcodes only work on strings.
	CharMode

	// TokenMode opcodes only work on token slices.
	TokenMode
)

func (m Mode) String() string {
	switch m {
	case CharMode:
		return "characters"
	case TokenMode:
		return "tokens"
	default:
		return "any"
	}
}

// OpMeta describes the operands and behavior class of an opcode.
type OpMeta struct {
	Code OpCode
	Name string

	// HasOffset is true iff Op.Offset is a code offset.
	HasOffset bool

	// Table is the table Op.Arg indexes, if any.
	Table Table

	// HasMatcher is true iff Op.Matcher must name a Matcher.
	HasMatcher bool

	// Leaf is true for instructions that consume input directly.
	Leaf bool

	Mode    Mode
	Illegal bool
}

func control(code OpCode, name string, offset bool) OpMeta {
	return OpMeta{Code: code, Name: name, HasOffset: offset}
}

func leaf(code OpCode, name string, table Table, mode Mode) OpMeta {
	return OpMeta{Code: code, Name: name, Table: table, HasMatcher: true, Leaf: true, Mode: mode}
}

var opMeta = []OpMeta{
	control(OpJump, "JUMP", true),
	{Code: OpCall, Name: "CALL", HasOffset: true, HasMatcher: true},
	control(OpRet, "RET", false),
	control(OpChoice, "CHOICE", true),
	control(OpPredicateChoice, "PCHOICE", true),
	control(OpCommit, "COMMIT", true),
	control(OpCommitVerify, "COMMITV", true),
	control(OpBacktrack, "BACKTRACK", false),
	control(OpBackCommit, "BCOMMIT", true),
	control(OpFailTwice, "FAIL2X", false),
	control(OpIgnoreErrors, "IGNERR", false),
	control(OpEnd, "END", false),
	leaf(OpLiteral, "LIT", TableLiteral, AnyMode),
	leaf(OpPattern, "REGEXP", TablePattern, CharMode),
	leaf(OpClass, "CLASS", TableClass, CharMode),
	leaf(OpAnyChar, "ANYCHAR", TableNone, CharMode),
	leaf(OpEndOfInput, "EOI", TableNone, AnyMode),
	leaf(OpNothing, "NOTHING", TableNone, AnyMode),
	leaf(OpTokenType, "TTYPE", TableTokenType, TokenMode),
	leaf(OpAnyToken, "ANYTOK", TableNone, TokenMode),
	leaf(OpTillNewLine, "TILLNL", TableNone, TokenMode),
}

type byCode []OpMeta

var _ sort.Interface = (byCode)(nil)

func (x byCode) Len() int           { return len(x) }
func (x byCode) Less(i, j int) bool { return x[i].Code < x[j].Code }
func (x byCode) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }

func init() {
	assert(len(opMeta) == int(numOpCodes), "len(opMeta) == numOpCodes")
	assert(sort.IsSorted(byCode(opMeta)), "IsSorted(byCode(opMeta))")
	for i, meta := range opMeta {
		assert(meta.Code == OpCode(i), "opMeta[%d] holds %s", i, meta.Name)
	}
}
