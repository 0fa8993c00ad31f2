// Package render draws lifting computations as ASCII diagrams, like so:
//
//	 _ _ _ _ _ _ _ _ _ ===== =====
//	; 97  ; 73  ; 33  | 79  | 45  |
//	'- - -'- - -'- - -'====='====='
//	               |     |     |
//	               +-----+-----+
//	                     |
//	 ===== ===== ===== _ _ _ _ _ _
//	| 97  |  8  | 33  |     ;     ;
//	'====='====='====='- - -'- - -'
//
// Solid boxes hold values a later computation still reads. Dashed boxes are
// either not computed yet or no longer needed.
package render

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultBoxWidth is the width of one array cell including its left border.
const DefaultBoxWidth = 6

// Appearance is how a cell is drawn.
type Appearance int

const (
	// Hidden draws neither border nor value.
	Hidden Appearance = iota
	// NoBorder draws the value only.
	NoBorder
	// Dashed draws a dashed border.
	Dashed
	// Solid draws a solid border.
	Solid
)

// String returns the string representation of the appearance.
func (a Appearance) String() string {
	switch a {
	case Hidden:
		return "hidden"
	case NoBorder:
		return "no_border"
	case Dashed:
		return "dashed_border"
	case Solid:
		return "solid_border"
	default:
		return "unknown"
	}
}

// Cell is one array element to draw.
type Cell struct {
	Value      int
	Known      bool
	Appearance Appearance
}

// DrawArray draws cells as a row of boxes. The result always has three
// lines, with trailing spaces removed.
func DrawArray(cells []Cell, width int) string {
	if len(cells) == 0 {
		return "\n\n"
	}

	var top, middle, bottom strings.Builder
	for i, c := range cells {
		switch c.Appearance {
		case Hidden, NoBorder:
			top.WriteString(strings.Repeat(" ", width))
			bottom.WriteString(strings.Repeat(" ", width))
		default:
			t := []byte(" " + strings.Repeat("_", width-1))
			b := []byte("'" + strings.Repeat("-", width-1))
			if c.Appearance == Solid {
				t = []byte(" " + strings.Repeat("=", width-1))
				b = []byte("'" + strings.Repeat("=", width-1))
			} else {
				for j := 2; j < width; j += 2 {
					t[j], b[j] = ' ', ' '
				}
			}
			top.Write(t)
			bottom.Write(b)
		}

		prev := c.Appearance
		if i > 0 {
			prev = cells[i-1].Appearance
		}
		middle.WriteByte(separator(prev, c.Appearance))

		if c.Known && c.Appearance != Hidden {
			middle.WriteString(center(strconv.Itoa(c.Value), width-1))
		} else {
			middle.WriteString(strings.Repeat(" ", width-1))
		}
	}

	switch cells[len(cells)-1].Appearance {
	case Solid:
		middle.WriteByte('|')
		bottom.WriteByte('\'')
	case Dashed:
		middle.WriteByte(';')
		bottom.WriteByte('\'')
	}

	return strings.Join([]string{
		strings.TrimRight(top.String(), " "),
		strings.TrimRight(middle.String(), " "),
		strings.TrimRight(bottom.String(), " "),
	}, "\n")
}

// separator returns the border between two neighbouring cells. Solid wins
// over dashed.
func separator(left, right Appearance) byte {
	switch {
	case left == Solid || right == Solid:
		return '|'
	case left == Dashed || right == Dashed:
		return ';'
	default:
		return ' '
	}
}

// center pads s to width, putting any odd space on the right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}

// DrawConnections draws lines joining the cells at sources to the cell at
// dest, for placing between two DrawArray rows of the same width. The
// result always has three lines.
func DrawConnections(sources []int, dest, width int) string {
	if len(sources) == 0 {
		return "\n\n"
	}
	lhs := width / 2
	rhs := width - lhs - 1

	sorted := slices.Clone(sources)
	slices.Sort(sorted)
	isSource := func(x int) bool {
		_, ok := slices.BinarySearch(sorted, x)
		return ok
	}

	var lines [3]strings.Builder
	for x := 0; x <= sorted[len(sorted)-1]; x++ {
		if isSource(x) {
			lines[0].WriteString(strings.Repeat(" ", lhs) + "|" + strings.Repeat(" ", rhs))
		} else {
			lines[0].WriteString(strings.Repeat(" ", width))
		}
	}

	leftmost := min(sorted[0], dest)
	rightmost := max(sorted[len(sorted)-1], dest)
	for x := 0; x <= rightmost; x++ {
		fill(&lines[1], '-', lhs, leftmost < x && x <= rightmost)
		switch {
		case x < leftmost:
			lines[1].WriteByte(' ')
		case x == dest || isSource(x):
			lines[1].WriteByte('+')
		default:
			lines[1].WriteByte('-')
		}
		fill(&lines[1], '-', rhs, leftmost <= x && x < rightmost)
	}

	lines[2].WriteString(strings.Repeat(" ", dest*width+lhs) + "|")

	return strings.Join([]string{
		strings.TrimRight(lines[0].String(), " "),
		strings.TrimRight(lines[1].String(), " "),
		lines[2].String(),
	}, "\n")
}

func fill(b *strings.Builder, c byte, n int, on bool) {
	if !on {
		c = ' '
	}
	for range n {
		b.WriteByte(c)
	}
}
