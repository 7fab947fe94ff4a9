package grammar

// SkipPolicy decides, for one node at a time, whether a rule's node is left
// out of the syntax tree. A skipped node's children take its place in its
// parent.
type SkipPolicy interface {
	Skip(children int) bool
}

// SkipFunc adapts a function to a SkipPolicy.
type SkipFunc func(children int) bool

func (f SkipFunc) Skip(children int) bool { return f(children) }

type skipNever struct{}
type skipAlways struct{}
type skipIfOneChild struct{}

func (skipNever) Skip(int) bool        { return false }
func (skipAlways) Skip(int) bool       { return true }
func (skipIfOneChild) Skip(n int) bool { return n == 1 }

func (skipNever) String() string      { return "never" }
func (skipAlways) String() string     { return "always" }
func (skipIfOneChild) String() string { return "if-one-child" }

// The built-in policies.
var (
	Never      SkipPolicy = skipNever{}
	Always     SkipPolicy = skipAlways{}
	IfOneChild SkipPolicy = skipIfOneChild{}
)
