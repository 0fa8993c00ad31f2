// Package schedule evaluates lifting pipelines under different computation
// orders.
//
// Every strategy computes the same values; they differ only in when each
// sample is computed and how much intermediate state is held while doing so.
// Each strategy records one dwt.Event per computed sample, in the exact order
// the computations happen.
package schedule

import (
	"slices"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
)

// Step is one lifting stage evaluated in a given direction.
type Step struct {
	Stage dwt.Stage
	Dir   dwt.Direction
}

// Analysis returns the analysis steps of a wavelet.
func Analysis(w *dwt.Wavelet) []Step {
	return steps(w.AnalysisStages(), dwt.Analysis)
}

// Synthesis returns the synthesis steps of a wavelet.
func Synthesis(w *dwt.Wavelet) []Step {
	return steps(w.SynthesisStages(), dwt.Synthesis)
}

func steps(stages []dwt.Stage, dir dwt.Direction) []Step {
	out := make([]Step, len(stages))
	for i, s := range stages {
		out[i] = Step{Stage: s, Dir: dir}
	}
	return out
}

// Pipeline is a chain of lifting steps applied to an interleaved input.
//
// Steps are numbered from 1 across all phases. Stage 0 is the split input,
// and stage s holds the parity written by step s. A phase boundary marks a
// point where the intermediate signal is meaningful on its own, such as the
// transform coefficients between analysis and synthesis.
type Pipeline struct {
	input    []int
	steps    []Step
	bounds   []int
	versions [][2]int
	lengths  [2]int
}

// NewPipeline creates a pipeline over input with one or more phases of steps.
// The input is copied.
func NewPipeline(input []int, phases ...[]Step) (*Pipeline, error) {
	if len(input) < 2 {
		return nil, dwt.ErrShortSignal
	}

	p := &Pipeline{
		input:   slices.Clone(input),
		lengths: dwt.Lengths(len(input)),
	}
	for _, phase := range phases {
		if len(phase) == 0 {
			continue
		}
		p.steps = append(p.steps, phase...)
		p.bounds = append(p.bounds, len(p.steps))
	}
	if len(p.steps) == 0 {
		return nil, &dwt.ConfigurationError{Stage: -1, Reason: "pipeline has no steps"}
	}

	// versions[s][parity] is the step that last wrote parity at or before s.
	p.versions = make([][2]int, len(p.steps)+1)
	for s := 1; s <= len(p.steps); s++ {
		p.versions[s] = p.versions[s-1]
		p.versions[s][p.steps[s-1].Stage.Target()] = s
	}
	return p, nil
}

// Len returns the number of samples in the input and in the final output.
func (p *Pipeline) Len() int {
	return len(p.input)
}

// Input returns a copy of the interleaved input.
func (p *Pipeline) Input() []int {
	return slices.Clone(p.input)
}

// Lengths returns the lengths of the even and odd subsequences.
func (p *Pipeline) Lengths() [2]int {
	return p.lengths
}

// NumSteps returns the total number of steps across all phases.
func (p *Pipeline) NumSteps() int {
	return len(p.steps)
}

// Step returns step s (1-based).
func (p *Pipeline) Step(s int) Step {
	return p.steps[s-1]
}

// Boundaries returns the last step of each phase.
func (p *Pipeline) Boundaries() []int {
	return slices.Clone(p.bounds)
}

// Version returns the stage holding the current value of parity after
// stage s has run.
func (p *Pipeline) Version(s int, parity dwt.Parity) int {
	return p.versions[s][parity]
}

// Versions returns the current stage of both parities after stage s has run.
func (p *Pipeline) Versions(s int) [2]int {
	return p.versions[s]
}

// Leaves returns freshly allocated even and odd subsequences of the input.
func (p *Pipeline) Leaves() [2][]int {
	return dwt.Split(p.input)
}

// compute evaluates step s at pos from the previous target value and the
// source subsequence, and returns the matching event. Tap reads are
// recorded in the order the evaluator performs them.
func (p *Pipeline) compute(s, pos, prev int, src dwt.Source) (dwt.Event, error) {
	step := p.steps[s-1]
	target := step.Stage.Target()
	source := target.Opposite()

	rec := &recorder{
		Source: src,
		stage:  p.versions[s-1][source],
		parity: source,
		refs:   make([]dwt.Ref, 1, len(step.Stage.Taps)+1),
	}
	rec.refs[0] = dwt.Ref{Stage: p.versions[s-1][target], Parity: target, Position: pos}

	v, err := dwt.Evaluate(step.Stage, step.Dir, prev, rec, pos)
	if err != nil {
		return dwt.Event{}, err
	}
	return dwt.Event{
		Stage:    s,
		Parity:   target,
		Position: pos,
		Inputs:   rec.refs,
		Value:    v,
	}, nil
}

// recorder wraps a Source and logs every successful read as a Ref.
type recorder struct {
	dwt.Source
	stage  int
	parity dwt.Parity
	refs   []dwt.Ref
}

func (r *recorder) At(pos int) (int, error) {
	v, err := r.Source.At(pos)
	if err != nil {
		return 0, err
	}
	r.refs = append(r.refs, dwt.Ref{Stage: r.stage, Parity: r.parity, Position: pos})
	return v, nil
}
