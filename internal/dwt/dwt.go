// Package dwt implements the building blocks of a one-dimensional integer
// lifting wavelet transform.
//
// A signal is split by index parity into an even subsequence (low-pass once
// transformed) and an odd subsequence (high-pass). Each lifting stage rewrites
// one of the two subsequences from a weighted, shifted sum of the other, so
// every stage is exactly invertible in integer arithmetic:
//
//   - Predict stages rewrite odd samples from even neighbours.
//   - Update stages rewrite even samples from odd neighbours.
//
// Tap lookups that fall outside a subsequence are folded back with Extend.
package dwt

import "fmt"

// Direction selects analysis (forward) or synthesis (inverse) evaluation of a stage.
type Direction int

const (
	// Analysis transforms a signal into wavelet coefficients.
	Analysis Direction = iota
	// Synthesis reconstructs a signal from wavelet coefficients.
	Synthesis
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case Analysis:
		return "analysis"
	case Synthesis:
		return "synthesis"
	default:
		return "unknown"
	}
}

// Parity identifies one of the two subsequences of a split signal.
type Parity int

const (
	// Even is the subsequence of samples at even indices.
	Even Parity = iota
	// Odd is the subsequence of samples at odd indices.
	Odd
)

// Opposite returns the other parity.
func (p Parity) Opposite() Parity {
	return 1 - p
}

// String returns the string representation of the parity.
func (p Parity) String() string {
	switch p {
	case Even:
		return "even"
	case Odd:
		return "odd"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// Lengths returns the lengths of the even and odd subsequences of a signal
// of n samples.
func Lengths(n int) [2]int {
	return [2]int{(n + 1) / 2, n / 2}
}

// Locate maps an index of an interleaved signal to its parity and position.
func Locate(index int) (Parity, int) {
	return Parity(index & 1), index >> 1
}

// Index maps a parity and position back to an interleaved signal index.
func Index(p Parity, pos int) int {
	return 2*pos + int(p)
}

// Split separates a signal into freshly allocated even and odd subsequences.
func Split(signal []int) [2][]int {
	lengths := Lengths(len(signal))
	parts := [2][]int{make([]int, lengths[Even]), make([]int, lengths[Odd])}

	// Copy even samples
	for i, j := 0, 0; i < len(signal); i, j = i+2, j+1 {
		parts[Even][j] = signal[i]
	}
	// Copy odd samples
	for i, j := 1, 0; i < len(signal); i, j = i+2, j+1 {
		parts[Odd][j] = signal[i]
	}
	return parts
}

// Merge interleaves even and odd subsequences back into a single signal.
// It is the inverse of Split.
func Merge(parts [2][]int) []int {
	out := make([]int, len(parts[Even])+len(parts[Odd]))
	for j, v := range parts[Even] {
		out[2*j] = v
	}
	for j, v := range parts[Odd] {
		out[2*j+1] = v
	}
	return out
}

// Extend folds any integer index into [0, length) by half-sample symmetric
// reflection: the edge sample is mirrored along with its neighbours, so -1
// maps to 0, -2 to 1 and length to length-1. The reflection repeats with
// period 2*length, which keeps very wide taps on very short subsequences
// well defined.
//
// Extend panics if length is not positive.
func Extend(index, length int) int {
	if length <= 0 {
		panic(fmt.Sprintf("dwt: extend index %d over empty subsequence", index))
	}
	period := 2 * length
	i := index % period
	if i < 0 {
		i += period
	}
	if i >= length {
		i = period - 1 - i
	}
	return i
}
