// Package pegvm implements a backtracking virtual machine for Parsing
// Expression Grammars.
//
// A Program is a flat list of Op values produced by an Assembler. The
// program is immutable once assembled and may be shared by any number of
// Machine values, one per parse. A Machine runs over either a string (for
// character-level grammars) or a slice of tokens (for grammars on top of a
// lexer), and produces a tree of ParseNode values.
//
// Every Op has an OpCode, an optional signed code Offset relative to the
// address of the Op itself, an optional Arg indexing one of the Program's
// constant tables, and an optional Matcher identifying the rule, token, or
// leaf that produced the nodes it creates.
//
// The machine state is:
//
//   index         cursor into the input
//   address       index into Program.Ops of the Op to execute next
//   stack         linked list of frames; call frames have a matcher,
//                 backtrack frames do not
//   ignoreErrors  true while failures must not count as diagnostics
//   calls[a]      input index at which the routine at address a is active
//   memos[i]      last memoizable node that started at input index i
//
// The instructions follow, with their behaviors explained both with prose
// and with Go-like pseudocode.
//
// • JUMP
//
//   address += Offset
//
// • CALL
//
//   if Matcher.Memoize && memos[index].Matcher == Matcher {
//     top.children.append(memos[index])
//     index = memos[index].End
//     address++
//     return
//   }
//   target := address + Offset
//   if calls[target] == index { error(ErrLeftRecursion) }
//   push(call frame{index, address + 1, Matcher, ignoreErrors,
//                   target, calls[target]})
//   calls[target] = index
//   address = target
//
// Enters a rule. A rule that is entered again at the same input index
// before it returns can never make progress, so this is reported as left
// recursion rather than looping forever.
//
// • RET
//
//   frame := pop()
//   calls[frame.target] = frame.previousCall
//   node := {frame.Matcher, frame.index, index, frame.children}
//   top.children.append(node)
//   if frame.Matcher.Memoize { memos[frame.index] = node }
//   ignoreErrors = frame.ignoreErrors
//   address = frame.address
//
// • CHOICE
//
//   push(backtrack frame{index, address + Offset, ignoreErrors})
//   address++
//
// Sets up an alternative: if anything fails before the matching COMMIT,
// the input is rewound and execution continues at the saved address.
//
// • PCHOICE
//
//   CHOICE, then ignoreErrors = true
//
// Used by lookahead, where failures are expected.
//
// • COMMIT
//
//   frame := pop()
//   top.children.append(frame.children...)
//   address += Offset
//
// • COMMITV
//
//   if index == top.index { error(ErrEmptyRepetition) }
//   COMMIT
//
// Closes one iteration of a repetition. An iteration that consumes nothing
// would repeat forever.
//
// • BACKTRACK
//
//   if !ignoreErrors { furthest = max(furthest, index) }
//   while top is a call frame { pop and restore calls[] }
//   if stack is empty { halt(Failure) }
//   frame := pop()
//   index, address, ignoreErrors = frame.index, frame.address, frame.ignoreErrors
//
// • BCOMMIT
//
//   frame := pop()
//   index, ignoreErrors = frame.index, frame.ignoreErrors
//   address += Offset
//
// Closes a positive lookahead: the input is un-consumed, but the match
// succeeds.
//
// • FAIL2X
//
//   index = top.index
//   pop()
//   BACKTRACK
//
// Closes a negative lookahead: the inner match succeeded, so the enclosing
// expression fails.
//
// • IGNERR
//
//   ignoreErrors = true
//
// • END
//
//   halt(Success)
//
// The remaining instructions are leaves. Each one tries to match the input
// at index; on success it appends a leaf node covering the matched input and
// advances index, on failure it executes BACKTRACK.
//
//   LIT     Literals[Arg] (strings), or a token whose Value is Literals[Arg]
//   REGEXP  Patterns[Arg], anchored at index
//   CLASS   one rune in Classes[Arg]
//   ANYCHAR one rune
//   EOI     nothing, and only at the end of the input or before an EOF token
//   NOTHING never matches
//   TTYPE   one token whose Type is TokenTypes[Arg]
//   ANYTOK  one token that is not EOF
//   TILLNL  every token on the same line as the previous token; never fails
//
package pegvm
