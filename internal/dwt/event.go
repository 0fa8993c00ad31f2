package dwt

import (
	"fmt"
	"strings"
)

// Ref names one computed value: the sample at Position of the Parity
// subsequence as written by Stage. Stage 0 is the split input; stage s is
// the output of the s-th lifting step of a pipeline.
type Ref struct {
	Stage    int
	Parity   Parity
	Position int
}

// String returns a compact form such as "s2.odd[3]".
func (r Ref) String() string {
	return fmt.Sprintf("s%d.%s[%d]", r.Stage, r.Parity, r.Position)
}

// Event records one sample computation: the value written and every value
// read to produce it, in the order they were read. The previous value of
// the target sample always comes first, followed by one input per tap.
type Event struct {
	Stage    int
	Parity   Parity
	Position int
	Inputs   []Ref
	Value    int
}

// Ref returns the reference of the value this event computed.
func (e Event) Ref() Ref {
	return Ref{Stage: e.Stage, Parity: e.Parity, Position: e.Position}
}

// String returns a one-line description of the event.
func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s = %d <-", e.Ref(), e.Value)
	for _, in := range e.Inputs {
		b.WriteByte(' ')
		b.WriteString(in.String())
	}
	return b.String()
}
