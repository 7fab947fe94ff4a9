package pegvm

// frame is a single element of the Machine's stack.
//
// Call frames have a matcher; backtrack frames do not. The bottom frame is a
// sentinel that collects the root node.
type frame struct {
	parent *frame

	// index is the input index when the frame was pushed. Backtracking
	// to this frame restores it.
	index int

	// address is the return address of a call frame, or the fallback
	// address of a backtrack frame.
	address int

	matcher      *Matcher
	ignoreErrors bool
	sentinel     bool

	// calledAddress and previousCall restore Machine.calls when a call
	// frame is popped.
	calledAddress int
	previousCall  int

	// children accumulates the nodes produced since the frame was pushed.
	children []*ParseNode
}

func (fr *frame) isCall() bool {
	return fr.matcher != nil
}
