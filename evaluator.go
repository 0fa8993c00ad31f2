package lifting

import (
	"fmt"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
	"github.com/mrjoshuak/go-lifting/internal/schedule"
)

// Evaluator computes individual output samples on demand. Only the values
// an output depends on are computed, each at most once.
//
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	w     *Wavelet
	mode  Mode
	inner *schedule.Evaluator
	len   int
}

// NewEvaluator creates an evaluator for the transform selected by mode.
func NewEvaluator(w *Wavelet, input []int, mode Mode) (*Evaluator, error) {
	d, err := newDriver(w, mode, &Options{Strategy: StrategyLazy})
	if err != nil {
		return nil, err
	}
	p, err := d.pipeline(input)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	return &Evaluator{w: w, mode: mode, inner: schedule.NewEvaluator(p), len: p.Len()}, nil
}

// Len returns the number of output samples.
func (e *Evaluator) Len() int {
	return e.len
}

// At returns the output sample at an interleaved index. It returns a
// *RangeError if index is outside the output.
func (e *Evaluator) At(index int) (int, error) {
	v, err := e.inner.Output(index)
	if err != nil {
		return 0, err
	}
	if e.mode == ModeAnalyze {
		return v, nil
	}
	return dwt.ScaleDown([]int{v}, e.w.Shift)[0], nil
}

// Events returns the computations performed so far, in order.
func (e *Evaluator) Events() []Event {
	return e.inner.Events()
}

// Stats returns the demand counters so far.
func (e *Evaluator) Stats() Stats {
	return e.inner.Stats()
}
