package schedule

import (
	"fmt"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
)

// Chained runs every step as a streaming FIR filter in a pipeline.
//
// The input arrives one position per tick. Step s lags step s-1 by the
// step's lookahead, which is exactly enough for every upstream sample in
// its tap support to exist. Each node pulls each upstream sample once into
// a bounded ring, so the state a node holds depends on tap geometry only,
// never on signal length.
type Chained struct{}

// Name implements Strategy.
func (Chained) Name() string { return NameChained }

// Run implements Strategy.
func (Chained) Run(p *Pipeline) (*Result, error) {
	c := newChain(p)
	res := &Result{}

	last := c.nodes[len(c.nodes)-1]
	end := last.delay + max(p.lengths[dwt.Even], p.lengths[dwt.Odd])
	for t := 0; t < end; t++ {
		c.input.now = t
		for _, n := range c.nodes {
			events, err := n.tick(t)
			if err != nil {
				return nil, fmt.Errorf("tick %d step %d: %w", t, n.s, err)
			}
			res.Events = append(res.Events, events...)
		}
	}

	res.Output = dwt.Merge(c.sink)
	res.Stats.Window = make([]int, len(c.nodes))
	for i, n := range c.nodes {
		res.Stats.Window[i] = n.peak
	}
	return res, nil
}

// WindowBound returns the most samples the chained node for step s may hold:
// its source window, its target slot and, unless it is the last node, the
// output queues of both parities. Before the downstream node starts, those
// queues fill up to its lookahead plus the sample of the current tick.
func WindowBound(p *Pipeline, s int) int {
	stage := p.Step(s).Stage
	bound := stage.Lookbehind() + stage.Lookahead() + 1 + 1
	if s < p.NumSteps() {
		bound += 2 * (p.Step(s+1).Stage.Lookahead() + 1)
	}
	return bound
}

// upstream produces samples of one stage in position order.
type upstream interface {
	pull(parity dwt.Parity, pos int) (int, error)
}

type chain struct {
	input *stream
	nodes []*node
	sink  [2][]int
}

func newChain(p *Pipeline) *chain {
	c := &chain{input: &stream{leaves: p.Leaves()}}
	c.sink = [2][]int{
		make([]int, 0, p.lengths[dwt.Even]),
		make([]int, 0, p.lengths[dwt.Odd]),
	}

	var up upstream = c.input
	delay := 0
	for s := 1; s <= p.NumSteps(); s++ {
		stage := p.Step(s).Stage
		target := stage.Target()
		delay += stage.Lookahead()

		n := &node{p: p, s: s, target: target, delay: delay, up: up}
		n.in[target] = newRing(1)
		n.in[target.Opposite()] = newRing(stage.Lookbehind() + stage.Lookahead() + 1)
		if s == p.NumSteps() {
			n.sink = &c.sink
		}
		c.nodes = append(c.nodes, n)
		up = n
	}
	return c
}

// stream delivers the raw input, one position per tick.
type stream struct {
	leaves [2][]int
	now    int
	next   [2]int
}

func (s *stream) pull(parity dwt.Parity, pos int) (int, error) {
	ref := dwt.Ref{Stage: 0, Parity: parity, Position: pos}
	if pos > s.now {
		return 0, &dwt.InternalConsistencyError{Ref: ref, Reason: "input sample has not arrived"}
	}
	if pos != s.next[parity] {
		return 0, &dwt.InternalConsistencyError{Ref: ref, Reason: "input sample pulled out of order"}
	}
	s.next[parity]++
	return s.leaves[parity][pos], nil
}

// node is one streaming lifting step.
type node struct {
	p      *Pipeline
	s      int
	target dwt.Parity
	delay  int
	up     upstream

	in   [2]*ring
	out  [2]queue
	sink *[2][]int
	peak int
}

// tick handles position t - delay: computes the target sample there and
// forwards the untouched parity.
func (n *node) tick(t int) ([]dwt.Event, error) {
	k := t - n.delay
	if k < 0 {
		return nil, nil
	}
	target, source := n.target, n.target.Opposite()
	lengths := n.p.lengths
	stage := n.p.Step(n.s).Stage

	var events []dwt.Event
	if k < lengths[target] {
		if err := n.fill(source, min(k+stage.Lookahead(), lengths[source]-1)); err != nil {
			return nil, err
		}
		if err := n.fill(target, k); err != nil {
			return nil, err
		}
		prev, err := n.read(target, k)
		if err != nil {
			return nil, err
		}
		win := &window{n: n, parity: source}
		ev, err := n.p.compute(n.s, k, prev, win)
		if err != nil {
			return nil, err
		}
		n.emit(target, ev.Value)
		events = append(events, ev)
	}
	if k < lengths[source] {
		if err := n.fill(source, k); err != nil {
			return nil, err
		}
		v, err := n.read(source, k)
		if err != nil {
			return nil, err
		}
		n.emit(source, v)
	}

	held := n.in[dwt.Even].held() + n.in[dwt.Odd].held() + n.out[dwt.Even].len() + n.out[dwt.Odd].len()
	n.peak = max(n.peak, held)
	return events, nil
}

// fill pulls upstream samples of parity until position upto is buffered.
func (n *node) fill(parity dwt.Parity, upto int) error {
	r := n.in[parity]
	for r.next <= upto {
		v, err := n.up.pull(parity, r.next)
		if err != nil {
			return err
		}
		r.push(v)
	}
	return nil
}

func (n *node) read(parity dwt.Parity, pos int) (int, error) {
	v, ok := n.in[parity].at(pos)
	if !ok {
		ref := dwt.Ref{Stage: n.p.Version(n.s-1, parity), Parity: parity, Position: pos}
		return 0, &dwt.InternalConsistencyError{Ref: ref, Reason: "sample outside chained window"}
	}
	return v, nil
}

func (n *node) emit(parity dwt.Parity, v int) {
	if n.sink != nil {
		n.sink[parity] = append(n.sink[parity], v)
		return
	}
	n.out[parity].push(v)
}

func (n *node) pull(parity dwt.Parity, pos int) (int, error) {
	v, ok := n.out[parity].pop(pos)
	if !ok {
		ref := dwt.Ref{Stage: n.p.Version(n.s, parity), Parity: parity, Position: pos}
		return 0, &dwt.InternalConsistencyError{Ref: ref, Reason: "sample not produced or already pulled"}
	}
	return v, nil
}

// window exposes a node's source ring to the stage evaluator.
type window struct {
	n      *node
	parity dwt.Parity
}

func (w *window) Len() int {
	return w.n.p.lengths[w.parity]
}

func (w *window) At(pos int) (int, error) {
	return w.n.read(w.parity, pos)
}

// ring keeps the most recent samples of a stream, addressed by position.
type ring struct {
	buf  []int
	next int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]int, capacity)}
}

func (r *ring) push(v int) {
	r.buf[r.next%len(r.buf)] = v
	r.next++
}

func (r *ring) at(pos int) (int, bool) {
	if pos < 0 || pos >= r.next || pos < r.next-len(r.buf) {
		return 0, false
	}
	return r.buf[pos%len(r.buf)], true
}

func (r *ring) held() int {
	return min(r.next, len(r.buf))
}

// queue hands samples downstream in position order.
type queue struct {
	vals []int
	head int
}

func (q *queue) push(v int) {
	q.vals = append(q.vals, v)
}

func (q *queue) pop(pos int) (int, bool) {
	if len(q.vals) == 0 || pos != q.head {
		return 0, false
	}
	v := q.vals[0]
	q.vals = q.vals[1:]
	q.head++
	return v, true
}

func (q *queue) len() int {
	return len(q.vals)
}
