package render

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
)

// Row is one line of the diagram: the signal as it stands after a stage.
type Row struct {
	Name string
	// Versions names the stage holding the current even and odd values.
	Versions [2]int
}

// Trace is a recorded computation ready for drawing.
type Trace struct {
	Title string
	Rows  []Row
	// Leaves is the interleaved stage 0 signal.
	Leaves []int
	Events []dwt.Event
}

const clearScreen = "\033[2J\033[H"

const legend = `         _ _ _   Value not         =====   Value will
Key:    ;     ;  used for         |     |  be used in
         - - -   any future        =====   a future
                 computation               computation
`

// Animation draws one frame per computation of a trace.
//
// Frame 0 shows the input only; frame t shows the state right after event
// t-1 and the connections it read.
type Animation struct {
	trace     Trace
	width     int
	nameWidth int

	values   map[dwt.Ref]int
	produced map[dwt.Ref]int
	lastUse  map[dwt.Ref]int
}

// NewAnimation indexes a trace for drawing. A width of zero fits the boxes
// to the widest value.
func NewAnimation(tr Trace, width int) *Animation {
	a := &Animation{
		trace:    tr,
		width:    width,
		values:   make(map[dwt.Ref]int),
		produced: make(map[dwt.Ref]int),
		lastUse:  make(map[dwt.Ref]int),
	}

	for i, v := range tr.Leaves {
		parity, pos := dwt.Locate(i)
		a.values[dwt.Ref{Parity: parity, Position: pos}] = v
	}
	for i, ev := range tr.Events {
		a.values[ev.Ref()] = ev.Value
		a.produced[ev.Ref()] = i
		for _, in := range ev.Inputs {
			a.lastUse[in] = i
		}
	}

	if a.width <= 0 {
		a.width = DefaultBoxWidth
		for _, v := range a.values {
			a.width = max(a.width, len(strconv.Itoa(v))+2)
		}
	}
	for _, r := range tr.Rows {
		a.nameWidth = max(a.nameWidth, len(r.Name)+1)
	}
	return a
}

// Len returns the number of frames.
func (a *Animation) Len() int {
	return len(a.trace.Events) + 1
}

// Width returns the box width in use.
func (a *Animation) Width() int {
	return a.width
}

// Frame draws frame t.
func (a *Animation) Frame(t int) string {
	var b strings.Builder
	if a.trace.Title != "" {
		b.WriteString(Title(a.trace.Title) + "\n\n")
	}

	var current *dwt.Event
	if t > 0 && t <= len(a.trace.Events) {
		current = &a.trace.Events[t-1]
	}

	indent := strings.Repeat(" ", a.nameWidth)
	for r, row := range a.trace.Rows {
		if r > 0 {
			joins := "\n\n"
			if current != nil && current.Stage == row.Versions[current.Parity] &&
				a.trace.Rows[r-1].Versions[current.Parity] != current.Stage {
				joins = DrawConnections(a.sources(current), dwt.Index(current.Parity, current.Position), a.width)
			}
			for _, line := range strings.Split(joins, "\n") {
				b.WriteString(indentLine(indent, line) + "\n")
			}
		}

		lines := strings.Split(DrawArray(a.cells(r, t), a.width), "\n")
		b.WriteString(indentLine(indent, lines[0]) + "\n")
		b.WriteString(row.Name + strings.Repeat(" ", a.nameWidth-len(row.Name)) + lines[1] + "\n")
		b.WriteString(indentLine(indent, lines[2]) + "\n")
	}

	b.WriteString("\n" + legend)
	return b.String()
}

// Frames draws every frame.
func (a *Animation) Frames() []string {
	frames := make([]string, a.Len())
	for t := range frames {
		frames[t] = a.Frame(t)
	}
	return frames
}

// cells returns row r as it stands at frame t.
func (a *Animation) cells(r, t int) []Cell {
	row := a.trace.Rows[r]
	final := r == len(a.trace.Rows)-1
	cells := make([]Cell, len(a.trace.Leaves))
	for i := range cells {
		parity, pos := dwt.Locate(i)
		ref := dwt.Ref{Stage: row.Versions[parity], Parity: parity, Position: pos}

		known := ref.Stage == 0
		if at, ok := a.produced[ref]; ok {
			known = at < t
		}
		last, used := a.lastUse[ref]
		needed := used && last >= t

		c := Cell{Value: a.values[ref], Known: known, Appearance: Dashed}
		if known && (needed || final) {
			c.Appearance = Solid
		}
		cells[i] = c
	}
	return cells
}

// sources returns the interleaved indices an event read.
func (a *Animation) sources(ev *dwt.Event) []int {
	out := make([]int, len(ev.Inputs))
	for i, in := range ev.Inputs {
		out[i] = dwt.Index(in.Parity, in.Position)
	}
	return out
}

func indentLine(indent, line string) string {
	if line == "" {
		return line
	}
	return indent + line
}

// Title turns a snake_case name into a display title.
func Title(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}
