// Package vc2 provides the lifting wavelet filters of the VC-2 video codec
// (SMPTE ST 2042-1) as dwt.Wavelet definitions.
//
// The codec specifies synthesis filters. The analysis stages are the same
// filters in reverse order with the sign of each update inverted.
package vc2

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/samber/lo"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
)

// Index identifies a VC-2 wavelet filter, matching the wavelet_index
// values of the VC-2 bitstream.
type Index int

const (
	// DeslauriersDubuc97 is the Deslauriers-Dubuc (9,7) filter.
	DeslauriersDubuc97 Index = iota
	// LeGall53 is the LeGall (5,3) filter.
	LeGall53
	// DeslauriersDubuc137 is the Deslauriers-Dubuc (13,7) filter.
	DeslauriersDubuc137
	// HaarNoShift is the Haar filter without a filter bit shift.
	HaarNoShift
	// HaarWithShift is the Haar filter with a one bit filter shift.
	HaarWithShift
	// Fidelity is the Fidelity filter.
	Fidelity
	// Daubechies97 is the integer approximation of the Daubechies (9,7) filter.
	Daubechies97
)

var names = [...]string{
	DeslauriersDubuc97:  "deslauriers_dubuc_9_7",
	LeGall53:            "le_gall_5_3",
	DeslauriersDubuc137: "deslauriers_dubuc_13_7",
	HaarNoShift:         "haar_no_shift",
	HaarWithShift:       "haar_with_shift",
	Fidelity:            "fidelity",
	Daubechies97:        "daubechies_9_7",
}

// String returns the snake_case name of the filter.
func (i Index) String() string {
	if i < 0 || int(i) >= len(names) {
		return "Index(" + strconv.Itoa(int(i)) + ")"
	}
	return names[i]
}

// Indices returns every filter index in bitstream order.
func Indices() []Index {
	return lo.Times(len(names), func(i int) Index { return Index(i) })
}

// Parse accepts a filter name or its numeric index.
func Parse(s string) (Index, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= len(names) {
			return 0, fmt.Errorf("unknown wavelet index %d", n)
		}
		return Index(n), nil
	}
	if i := slices.Index(names[:], s); i >= 0 {
		return Index(i), nil
	}
	return 0, fmt.Errorf("unknown wavelet %q", s)
}

// liftType is the VC-2 lifting filter type.
type liftType int

const (
	evenAddOdd liftType = iota + 1
	evenSubtractOdd
	oddAddEven
	oddSubtractEven
)

func (t liftType) updatesEven() bool {
	return t == evenAddOdd || t == evenSubtractOdd
}

func (t liftType) adds() bool {
	return t == evenAddOdd || t == oddAddEven
}

// filter is one VC-2 synthesis lifting stage: shift S, length L,
// delay D and L taps.
type filter struct {
	lift   liftType
	shift  int
	length int
	delay  int
	taps   []int
}

// analysis returns the analysis stage that this synthesis filter undoes.
//
// In the interleaved signal, tap i of a stage updating sample n reads
// sample n+2i-1. Measured in positions of the opposite subsequence that is
// an offset of i-1 when updating even samples and i when updating odd ones.
func (f filter) analysis() dwt.Stage {
	s := dwt.Stage{
		Kind:     dwt.Predict,
		Op:       dwt.Add,
		Shift:    f.shift,
		Rounding: dwt.RoundHalfUp,
		Taps:     make([]dwt.Tap, 0, f.length),
	}
	base := 0
	if f.lift.updatesEven() {
		s.Kind = dwt.Update
		base = -1
	}
	// Synthesis adding means analysis subtracts.
	if f.lift.adds() {
		s.Op = dwt.Subtract
	}
	for i := f.delay; i < f.delay+f.length; i++ {
		s.Taps = append(s.Taps, dwt.Tap{Offset: i + base, Weight: f.taps[i-f.delay]})
	}
	return s
}

type definition struct {
	shift     int
	synthesis []filter
}

// definitions holds the synthesis filters and filter bit shift of every
// wavelet in SMPTE ST 2042-1 (table 15.1 and section 15.4.4.3).
func definitions() map[Index]definition {
	return map[Index]definition{
		DeslauriersDubuc97: {shift: 1, synthesis: []filter{
			{evenSubtractOdd, 2, 2, 0, []int{1, 1}},
			{oddAddEven, 4, 4, -1, []int{-1, 9, 9, -1}},
		}},
		LeGall53: {shift: 1, synthesis: []filter{
			{evenSubtractOdd, 2, 2, 0, []int{1, 1}},
			{oddAddEven, 1, 2, 0, []int{1, 1}},
		}},
		DeslauriersDubuc137: {shift: 1, synthesis: []filter{
			{evenSubtractOdd, 5, 4, -1, []int{-1, 9, 9, -1}},
			{oddAddEven, 4, 4, -1, []int{-1, 9, 9, -1}},
		}},
		HaarNoShift: {shift: 0, synthesis: []filter{
			{evenSubtractOdd, 1, 1, 1, []int{1}},
			{oddAddEven, 0, 1, 0, []int{1}},
		}},
		HaarWithShift: {shift: 1, synthesis: []filter{
			{evenSubtractOdd, 1, 1, 1, []int{1}},
			{oddAddEven, 0, 1, 0, []int{1}},
		}},
		Fidelity: {shift: 0, synthesis: []filter{
			{oddAddEven, 8, 8, -3, []int{-2, -10, -25, 81, 81, -25, 10, -2}},
			{evenSubtractOdd, 8, 8, -3, []int{-8, 21, -46, 161, 161, -46, 21, -8}},
		}},
		Daubechies97: {shift: 1, synthesis: []filter{
			{evenSubtractOdd, 12, 2, 0, []int{1817, 1817}},
			{oddSubtractEven, 12, 2, 0, []int{3616, 3616}},
			{evenAddOdd, 12, 2, 0, []int{217, 217}},
			{oddAddEven, 12, 2, 0, []int{6497, 6497}},
		}},
	}
}

// Wavelet builds the definition of one filter.
func Wavelet(i Index) (*dwt.Wavelet, error) {
	def, ok := definitions()[i]
	if !ok {
		return nil, fmt.Errorf("unknown wavelet index %d", int(i))
	}
	w := &dwt.Wavelet{Name: i.String(), Shift: def.shift}
	for j := len(def.synthesis) - 1; j >= 0; j-- {
		w.Stages = append(w.Stages, def.synthesis[j].analysis())
	}
	return w, nil
}

// Catalog returns a freshly built mapping from filter name to definition.
// Callers own the result and may modify it.
func Catalog() map[string]*dwt.Wavelet {
	catalog := make(map[string]*dwt.Wavelet, len(names))
	for _, i := range Indices() {
		w, err := Wavelet(i)
		if err != nil {
			panic(fmt.Sprintf("vc2: built-in wavelet %s: %v", i, err))
		}
		catalog[i.String()] = w
	}
	return catalog
}
