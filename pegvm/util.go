package pegvm

import (
	"bytes"
	"errors"
	"fmt"
)

// assert panics if cond is false.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		var buf bytes.Buffer
		buf.WriteString("assertion failed: ")
		fmt.Fprintf(&buf, format, args...)
		panic(errors.New(buf.String()))
	}
}

