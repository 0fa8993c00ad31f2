package schedule

import (
	"fmt"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
)

// Lazy computes final outputs in order, demanding intermediate values only
// when an output first needs them. The whole pipeline, analysis and
// synthesis alike, forms one dependency graph.
type Lazy struct{}

// Name implements Strategy.
func (Lazy) Name() string { return NameLazy }

// Run implements Strategy.
func (Lazy) Run(p *Pipeline) (*Result, error) {
	e := NewEvaluator(p)
	out, err := e.All()
	if err != nil {
		return nil, err
	}
	return &Result{Output: out, Events: e.Events(), Stats: e.Stats()}, nil
}

// LazyTwoStep runs one lazy evaluation per phase. Each phase is fully
// materialized before the next phase starts demanding values, so encoding
// and decoding never interleave.
type LazyTwoStep struct{}

// Name implements Strategy.
func (LazyTwoStep) Name() string { return NameLazyTwoSteps }

// Run implements Strategy.
func (LazyTwoStep) Run(p *Pipeline) (*Result, error) {
	res := &Result{}
	leaves := p.Leaves()
	from := 0

	for phase, to := range p.Boundaries() {
		e := newEvaluator(p, from, to, leaves)
		out, err := e.All()
		if err != nil {
			return nil, fmt.Errorf("phase %d: %w", phase, err)
		}
		res.Events = append(res.Events, e.events...)
		res.Stats.Demands += e.stats.Demands
		res.Stats.Hits += e.stats.Hits
		res.Output = out

		leaves = dwt.Split(out)
		from = to
	}
	return res, nil
}

// Evaluator computes pipeline values on demand and memoizes each one.
//
// Values are addressed by dwt.Ref. Each computed value is stored in a flat
// memo table indexed by (stage, position) and is never computed twice.
// Recursion depth is bounded by the number of steps, since every demand
// descends at least one stage. An Evaluator is not safe for concurrent use.
type Evaluator struct {
	p      *Pipeline
	from   int
	to     int
	leaves [2][]int
	width  int

	memo   []int
	known  []bool
	events []dwt.Event
	stats  Stats
}

// NewEvaluator returns an evaluator over the whole pipeline.
func NewEvaluator(p *Pipeline) *Evaluator {
	return newEvaluator(p, 0, p.NumSteps(), p.Leaves())
}

// newEvaluator evaluates steps from+1 through to. The leaves hold the
// signal as it stands after stage from.
func newEvaluator(p *Pipeline, from, to int, leaves [2][]int) *Evaluator {
	width := p.lengths[dwt.Even]
	return &Evaluator{
		p:      p,
		from:   from,
		to:     to,
		leaves: leaves,
		width:  width,
		memo:   make([]int, (to-from)*width),
		known:  make([]bool, (to-from)*width),
	}
}

// Output returns the final output sample at an interleaved index.
func (e *Evaluator) Output(index int) (int, error) {
	if index < 0 || index >= e.p.Len() {
		return 0, &dwt.RangeError{Position: index, Length: e.p.Len()}
	}
	parity, pos := dwt.Locate(index)
	return e.Value(dwt.Ref{Stage: e.p.Version(e.to, parity), Parity: parity, Position: pos})
}

// All demands every final output in index order.
func (e *Evaluator) All() ([]int, error) {
	out := make([]int, e.p.Len())
	for i := range out {
		v, err := e.Output(i)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Value returns the value named by r, computing it and everything it
// depends on if needed.
func (e *Evaluator) Value(r dwt.Ref) (int, error) {
	if r.Parity != dwt.Even && r.Parity != dwt.Odd ||
		r.Position < 0 || r.Position >= e.p.lengths[r.Parity] {
		return 0, &dwt.InternalConsistencyError{Ref: r, Reason: "position outside subsequence"}
	}

	if r.Stage <= e.from {
		if r.Stage != e.p.Version(e.from, r.Parity) {
			return 0, &dwt.InternalConsistencyError{Ref: r, Reason: "stale input version"}
		}
		return e.leaves[r.Parity][r.Position], nil
	}
	if r.Stage > e.to || e.p.Step(r.Stage).Stage.Target() != r.Parity {
		return 0, &dwt.InternalConsistencyError{Ref: r, Reason: "no step writes this value"}
	}

	e.stats.Demands++
	slot := (r.Stage-e.from-1)*e.width + r.Position
	if e.known[slot] {
		e.stats.Hits++
		return e.memo[slot], nil
	}

	source := r.Parity.Opposite()
	prev, err := e.Value(dwt.Ref{Stage: e.p.Version(r.Stage-1, r.Parity), Parity: r.Parity, Position: r.Position})
	if err != nil {
		return 0, err
	}
	src := &demand{e: e, stage: e.p.Version(r.Stage-1, source), parity: source}
	ev, err := e.p.compute(r.Stage, r.Position, prev, src)
	if err != nil {
		return 0, err
	}

	if e.known[slot] {
		return 0, &dwt.InternalConsistencyError{Ref: r, Reason: "value computed twice"}
	}
	e.memo[slot] = ev.Value
	e.known[slot] = true
	e.events = append(e.events, ev)
	return ev.Value, nil
}

// Events returns the computations performed so far, in order.
func (e *Evaluator) Events() []dwt.Event {
	return e.events
}

// Stats returns demand counters for the computations performed so far.
func (e *Evaluator) Stats() Stats {
	return e.stats
}

// demand is a Source whose reads are lazy demands on an Evaluator.
type demand struct {
	e      *Evaluator
	stage  int
	parity dwt.Parity
}

func (d *demand) Len() int {
	return d.e.p.lengths[d.parity]
}

func (d *demand) At(pos int) (int, error) {
	return d.e.Value(dwt.Ref{Stage: d.stage, Parity: d.parity, Position: pos})
}
