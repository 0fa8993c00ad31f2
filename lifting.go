// Package lifting evaluates one-dimensional integer lifting wavelet
// transforms of the kind used by the VC-2 video codec, and records the
// order in which every sample is computed.
//
// A transform can be scheduled four ways. All of them produce identical
// results; they differ only in when each sample is computed and how much
// intermediate state is buffered:
//
//   - block: each lifting stage runs over the whole signal before the next.
//   - chained: stages run as a pipeline of streaming FIR filters.
//   - lazy: final outputs are demanded in turn; every intermediate value is
//     computed the first time it is needed and memoized.
//   - lazy_two_steps: like lazy, but the transform coefficients are fully
//     computed before any reconstruction starts.
//
// Basic usage:
//
//	w, err := lifting.NewWavelet("haar", []lifting.Stage{
//	    {Kind: lifting.Predict, Op: lifting.Subtract, Taps: []lifting.Tap{{Offset: 0, Weight: 1}}},
//	    {Kind: lifting.Update, Op: lifting.Add, Shift: 1, Taps: []lifting.Tap{{Offset: 0, Weight: 1}}},
//	}, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := lifting.Analyze(w, []int{1, 3, 5, 7}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Output) // [2 2 6 2]
package lifting

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
	"github.com/mrjoshuak/go-lifting/internal/schedule"
	"github.com/mrjoshuak/go-lifting/internal/vc2"
)

// Wavelet definition types.
type (
	// Wavelet is a named sequence of lifting stages in analysis order.
	Wavelet = dwt.Wavelet
	// Stage is one predict or update lifting step.
	Stage = dwt.Stage
	// Tap is one filter tap of a stage.
	Tap = dwt.Tap
	// Kind selects predict or update.
	Kind = dwt.Kind
	// Op is the sign applied by a stage during analysis.
	Op = dwt.Op
	// Rounding selects how a stage divides by its shift.
	Rounding = dwt.Rounding
)

// Stage kinds, operations and rounding modes.
const (
	Predict     = dwt.Predict
	Update      = dwt.Update
	Add         = dwt.Add
	Subtract    = dwt.Subtract
	RoundHalfUp = dwt.RoundHalfUp
	Truncate    = dwt.Truncate
)

// Computation record types.
type (
	// Parity identifies the even or odd subsequence.
	Parity = dwt.Parity
	// Ref names one computed value by stage, parity and position.
	Ref = dwt.Ref
	// Event records one sample computation and the values it read.
	Event = dwt.Event
	// Stats describes the work and buffering of one run.
	Stats = schedule.Stats
)

// Parities.
const (
	Even = dwt.Even
	Odd  = dwt.Odd
)

// Errors.
type (
	// ConfigurationError reports a malformed wavelet definition.
	ConfigurationError = dwt.ConfigurationError
	// RangeError reports a requested output position outside the output.
	RangeError = dwt.RangeError
	// InternalConsistencyError reports a violated evaluation invariant.
	InternalConsistencyError = dwt.InternalConsistencyError
)

// ErrShortSignal is returned for signals of fewer than two samples.
var ErrShortSignal = dwt.ErrShortSignal

// Extend folds an out-of-range index into [0, length) by half-sample
// symmetric reflection. It panics if length is not positive.
func Extend(index, length int) int {
	return dwt.Extend(index, length)
}

// NewWavelet creates a validated wavelet. The stages are copied.
func NewWavelet(name string, stages []Stage, shift int) (*Wavelet, error) {
	w := &Wavelet{Name: name, Stages: slices.Clone(stages), Shift: shift}
	for i := range w.Stages {
		w.Stages[i].Taps = slices.Clone(w.Stages[i].Taps)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Catalog maps wavelet names to definitions. It is passed explicitly to
// whoever selects wavelets by name; there is no global registry.
type Catalog map[string]*Wavelet

// VC2 returns a fresh catalog of the seven VC-2 wavelets, keyed by their
// snake_case names.
func VC2() Catalog {
	return Catalog(vc2.Catalog())
}

// Lookup returns the wavelet registered under name.
func (c Catalog) Lookup(name string) (*Wavelet, error) {
	w, ok := c[name]
	if !ok {
		return nil, &ConfigurationError{Wavelet: name, Stage: -1, Reason: "not in catalog"}
	}
	return w, nil
}

// Names returns the catalog's wavelet names in sorted order.
func (c Catalog) Names() []string {
	names := lo.Keys(c)
	slices.Sort(names)
	return names
}

// Validate checks every wavelet in the catalog.
func (c Catalog) Validate() error {
	for _, name := range c.Names() {
		if err := c[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Strategy selects the computation order of a transform.
type Strategy int

const (
	// StrategyBlock computes one whole lifting stage at a time.
	StrategyBlock Strategy = iota
	// StrategyChained streams samples through a pipeline of stages.
	StrategyChained
	// StrategyLazy computes values on demand over the whole pipeline.
	StrategyLazy
	// StrategyLazyTwoSteps computes values on demand, one phase at a time.
	StrategyLazyTwoSteps
)

// Strategies returns all strategies.
func Strategies() []Strategy {
	return []Strategy{StrategyBlock, StrategyChained, StrategyLazy, StrategyLazyTwoSteps}
}

// String returns the selector string of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyBlock:
		return schedule.NameBlock
	case StrategyChained:
		return schedule.NameChained
	case StrategyLazy:
		return schedule.NameLazy
	case StrategyLazyTwoSteps:
		return schedule.NameLazyTwoSteps
	default:
		return "unknown"
	}
}

// ParseStrategy accepts exactly block, chained, lazy and lazy_two_steps.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies() {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

func (s Strategy) scheduler() (schedule.Strategy, error) {
	return schedule.New(s.String())
}

// Mode selects which transform a run performs.
type Mode int

const (
	// ModeAnalyze transforms a signal into interleaved coefficients.
	ModeAnalyze Mode = iota
	// ModeSynthesize reconstructs a signal from interleaved coefficients.
	ModeSynthesize
	// ModeRoundTrip analyzes and then synthesizes in a single pipeline.
	ModeRoundTrip
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeAnalyze:
		return "analyze"
	case ModeSynthesize:
		return "synthesize"
	case ModeRoundTrip:
		return "round_trip"
	default:
		return "unknown"
	}
}

// Options holds the evaluation options.
type Options struct {
	// Strategy selects the computation order.
	Strategy Strategy

	// Verify checks every result against its inverse transform and reports
	// a mismatch as an InternalConsistencyError.
	Verify bool

	// Logger receives one debug record per run. Nil discards logging.
	Logger *slog.Logger
}

// DefaultOptions returns the default evaluation options.
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyBlock,
		Verify:   true,
	}
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Analyze transforms signal into interleaved coefficients: low-pass at even
// indices, high-pass at odd indices.
func Analyze(w *Wavelet, signal []int, o *Options) (*Result, error) {
	return Run(w, signal, ModeAnalyze, o)
}

// Synthesize reconstructs a signal from interleaved coefficients.
func Synthesize(w *Wavelet, coeffs []int, o *Options) (*Result, error) {
	return Run(w, coeffs, ModeSynthesize, o)
}

// RoundTrip analyzes and synthesizes signal as one pipeline. The output
// always equals the input; the events show how the chosen strategy
// interleaves encoding and decoding.
func RoundTrip(w *Wavelet, signal []int, o *Options) (*Result, error) {
	return Run(w, signal, ModeRoundTrip, o)
}

// Run performs the transform selected by mode.
func Run(w *Wavelet, input []int, mode Mode, o *Options) (*Result, error) {
	if o == nil {
		o = DefaultOptions()
	}
	d, err := newDriver(w, mode, o)
	if err != nil {
		return nil, err
	}
	return d.run(input)
}
