package dwt

// Source reads samples of the subsequence a stage takes its taps from.
// At is only ever called with positions in [0, Len()).
type Source interface {
	Len() int
	At(pos int) (int, error)
}

// Samples is a Source over a fully materialized subsequence.
type Samples []int

// Len returns the number of samples.
func (s Samples) Len() int { return len(s) }

// At returns the sample at pos.
func (s Samples) At(pos int) (int, error) { return s[pos], nil }

// Filter computes the rounded, shifted tap sum of a stage around pos.
// Tap positions outside the source are folded back with Extend.
func Filter(s Stage, src Source, pos int) (int, error) {
	n := src.Len()
	sum := 0
	for _, tap := range s.Taps {
		v, err := src.At(Extend(pos+tap.Offset, n))
		if err != nil {
			return 0, err
		}
		sum += tap.Weight * v
	}
	return round(sum, s.Shift, s.Rounding), nil
}

// Evaluate computes the new value of the target sample at pos, given its
// previous value. Synthesis applies the stage's operation with the opposite
// sign, which undoes the analysis step exactly.
func Evaluate(s Stage, dir Direction, target int, src Source, pos int) (int, error) {
	v, err := Filter(s, src, pos)
	if err != nil {
		return 0, err
	}
	op := s.Op
	if dir == Synthesis {
		op = op.Inverse()
	}
	if op == Subtract {
		return target - v, nil
	}
	return target + v, nil
}

// round divides sum by 2^shift. Go's >> on signed integers is arithmetic,
// so Truncate floors negative sums as well.
func round(sum, shift int, mode Rounding) int {
	if shift == 0 {
		return sum
	}
	if mode == RoundHalfUp {
		sum += 1 << (shift - 1)
	}
	return sum >> shift
}

// ScaleUp applies a wavelet's global shift before analysis.
func ScaleUp(signal []int, shift int) []int {
	out := make([]int, len(signal))
	for i, v := range signal {
		out[i] = v << shift
	}
	return out
}

// ScaleDown undoes ScaleUp after synthesis, rounding half up.
func ScaleDown(signal []int, shift int) []int {
	out := make([]int, len(signal))
	for i, v := range signal {
		out[i] = round(v, shift, RoundHalfUp)
	}
	return out
}
