package pegvm

import (
	"bytes"
	"errors"
	"fmt"
)

// Grammar faults. These are wrapped in a *GrammarError.
var (
	ErrUndefinedRule   = errors.New("rule is referenced but never defined")
	ErrInvalidPattern  = errors.New("invalid pattern")
	ErrEmptyRepetition = errors.New("the inner part of ZeroOrMore and OneOrMore must not allow empty matches")
	ErrLeftRecursion   = errors.New("left recursion has been detected")
	ErrRuleRedefined   = errors.New("rule has already been defined somewhere in the grammar")
	ErrNoRoot          = errors.New("no root rule")
	ErrWrongMode       = errors.New("expression does not apply to this kind of input")
	ErrAlreadyBuilt    = errors.New("grammar has already been built")
)

// Engine faults. These are wrapped in a *RuntimeError or *AssembleError.
var (
	ErrExecutionHalted = errors.New("execution already halted")
	ErrAddressRange    = errors.New("address out of range")
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrUnboundLabel    = errors.New("label is used but never emitted")
	ErrLabelRebound    = errors.New("label emitted twice")
)

// GrammarError reports a fault in the grammar itself, as opposed to the
// input. It is raised while building the grammar, or by the first parse
// that exercises the faulty rule.
type GrammarError struct {
	Err    error
	Rule   string
	Detail string
}

func (e *GrammarError) Error() string {
	var buf bytes.Buffer
	buf.WriteString("grammar error: ")
	buf.WriteString(e.Err.Error())
	if e.Rule != "" {
		fmt.Fprintf(&buf, ", involved rule: %s", e.Rule)
	}
	if e.Detail != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Detail)
	}
	return buf.String()
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}

// AssembleError is an error encountered while assembling a Program.
type AssembleError struct {
	Err   error
	Label string
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("assemble error: label %q: %v", e.Label, e.Err)
}

func (e *AssembleError) Unwrap() error {
	return e.Err
}

// RuntimeError is an error encountered during the execution of a Program
// that is not the grammar's fault. It means there is a bug in the VM or in
// the code that produced the Program.
type RuntimeError struct {
	Err     error
	Address int
	Index   int
	Op      *Op
}

func (e *RuntimeError) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "runtime error @ address %d index %d: ", e.Address, e.Index)
	if e.Op != nil {
		buf.WriteString(e.Op.Code.Meta().Name)
		buf.WriteString(": ")
	}
	buf.WriteString(e.Err.Error())
	return buf.String()
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
