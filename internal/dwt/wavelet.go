package dwt

import (
	"slices"

	"github.com/samber/lo"
)

// Kind is the kind of a lifting stage.
type Kind int

const (
	// Predict rewrites odd samples from even neighbours.
	Predict Kind = iota
	// Update rewrites even samples from odd neighbours.
	Update
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Predict:
		return "predict"
	case Update:
		return "update"
	default:
		return "unknown"
	}
}

// Target returns the parity a stage of this kind writes.
func (k Kind) Target() Parity {
	if k == Update {
		return Even
	}
	return Odd
}

// Op is the sign with which a stage's filtered value is applied during analysis.
type Op int

const (
	// Add adds the filtered value to the target sample.
	Add Op = iota
	// Subtract subtracts the filtered value from the target sample.
	Subtract
)

// Inverse returns the opposite operation.
func (o Op) Inverse() Op {
	if o == Add {
		return Subtract
	}
	return Add
}

// String returns the string representation of the operation.
func (o Op) String() string {
	switch o {
	case Add:
		return "+="
	case Subtract:
		return "-="
	default:
		return "?="
	}
}

// Rounding selects how a stage divides its filter sum by 2^Shift.
type Rounding int

const (
	// RoundHalfUp adds half the divisor before the arithmetic shift.
	RoundHalfUp Rounding = iota
	// Truncate shifts without an offset, rounding towards negative infinity.
	Truncate
)

// String returns the string representation of the rounding mode.
func (r Rounding) String() string {
	switch r {
	case RoundHalfUp:
		return "round-half-up"
	case Truncate:
		return "truncate"
	default:
		return "unknown"
	}
}

// Tap is one filter tap. Offset is relative to the target position and is
// measured in samples of the source subsequence.
type Tap struct {
	Offset int
	Weight int
}

// Stage is a single lifting step.
type Stage struct {
	Kind     Kind
	Op       Op
	Taps     []Tap
	Shift    int
	Rounding Rounding
}

// Target returns the parity this stage writes.
func (s Stage) Target() Parity {
	return s.Kind.Target()
}

// Source returns the parity this stage reads its taps from.
func (s Stage) Source() Parity {
	return s.Kind.Target().Opposite()
}

// Span returns the smallest and largest tap offsets.
func (s Stage) Span() (minOff, maxOff int) {
	offsets := lo.Map(s.Taps, func(t Tap, _ int) int { return t.Offset })
	return lo.Min(offsets), lo.Max(offsets)
}

// Lookahead returns how many positions beyond the target the stage may read
// from its source, including mirrored reads at the left edge.
func (s Stage) Lookahead() int {
	minOff, maxOff := s.Span()
	return max(0, maxOff, -minOff-1)
}

// Lookbehind returns how many positions before the target the stage may read
// from its source, including mirrored reads at the right edge.
func (s Stage) Lookbehind() int {
	minOff, maxOff := s.Span()
	return max(0, -minOff, maxOff+1)
}

// Wavelet is a named sequence of lifting stages in analysis order.
// Synthesis applies the same stages in reverse order with inverted sign.
type Wavelet struct {
	Name   string
	Stages []Stage

	// Shift scales the signal by 2^Shift before analysis and rounds it back
	// after synthesis, trading headroom for precision in the lifting stages.
	Shift int
}

// Validate reports a *ConfigurationError if the wavelet cannot be evaluated.
func (w *Wavelet) Validate() error {
	if w == nil {
		return &ConfigurationError{Stage: -1, Reason: "nil wavelet"}
	}
	if len(w.Stages) == 0 {
		return &ConfigurationError{Wavelet: w.Name, Stage: -1, Reason: "no lifting stages"}
	}
	if w.Shift < 0 || w.Shift > maxShift {
		return &ConfigurationError{Wavelet: w.Name, Stage: -1, Reason: "wavelet shift out of range"}
	}
	for i, s := range w.Stages {
		var reason string
		switch {
		case s.Kind != Predict && s.Kind != Update:
			reason = "unknown stage kind"
		case s.Op != Add && s.Op != Subtract:
			reason = "unknown stage operation"
		case s.Rounding != RoundHalfUp && s.Rounding != Truncate:
			reason = "unknown rounding mode"
		case len(s.Taps) == 0:
			reason = "stage has no taps"
		case s.Shift < 0 || s.Shift > maxShift:
			reason = "stage shift out of range"
		}
		if reason != "" {
			return &ConfigurationError{Wavelet: w.Name, Stage: i, Reason: reason}
		}
	}
	return nil
}

// maxShift keeps shifted sums of small signals well inside int range.
const maxShift = 30

// AnalysisStages returns a copy of the stages in analysis order.
func (w *Wavelet) AnalysisStages() []Stage {
	return slices.Clone(w.Stages)
}

// SynthesisStages returns the stages in synthesis order. Stages keep their
// analysis Op; evaluating them with the Synthesis direction inverts the sign.
func (w *Wavelet) SynthesisStages() []Stage {
	out := slices.Clone(w.Stages)
	slices.Reverse(out)
	return out
}
