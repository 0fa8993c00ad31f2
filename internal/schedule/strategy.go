package schedule

import (
	"fmt"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
)

// Strategy evaluates a whole pipeline in some computation order.
type Strategy interface {
	// Name returns the selector string of the strategy.
	Name() string
	// Run computes every final output sample of p.
	Run(p *Pipeline) (*Result, error)
}

// Result is the outcome of running a strategy.
type Result struct {
	// Output is the final interleaved signal.
	Output []int
	// Events lists every computed sample in computation order.
	Events []dwt.Event
	Stats  Stats
}

// Stats describes how much work and buffering a run needed.
type Stats struct {
	// Demands counts requests for computed values (lazy strategies).
	Demands int
	// Hits counts demands answered from the memo table.
	Hits int
	// Buffered is the peak number of samples held in stage buffers (block).
	Buffered int
	// Window is, per step, the peak number of samples a streaming node held (chained).
	Window []int
}

// Selector strings recognized by New.
const (
	NameBlock        = "block"
	NameChained      = "chained"
	NameLazy         = "lazy"
	NameLazyTwoSteps = "lazy_two_steps"
)

// Names lists the selector strings of all strategies.
var Names = []string{NameBlock, NameChained, NameLazy, NameLazyTwoSteps}

// New returns the strategy for a selector string.
func New(name string) (Strategy, error) {
	switch name {
	case NameBlock:
		return Block{}, nil
	case NameChained:
		return Chained{}, nil
	case NameLazy:
		return Lazy{}, nil
	case NameLazyTwoSteps:
		return LazyTwoStep{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// Block computes each step over every position before starting the next,
// like the textbook in-place lifting loop.
type Block struct{}

// Name implements Strategy.
func (Block) Name() string { return NameBlock }

// Run implements Strategy.
func (Block) Run(p *Pipeline) (*Result, error) {
	cur := p.Leaves()
	res := &Result{}

	for s := 1; s <= p.NumSteps(); s++ {
		target := p.Step(s).Stage.Target()
		src := dwt.Samples(cur[target.Opposite()])

		// The written parity gets a fresh buffer that replaces the old one.
		next := make([]int, len(cur[target]))
		res.Stats.Buffered = max(res.Stats.Buffered, len(cur[dwt.Even])+len(cur[dwt.Odd])+len(next))

		for pos := range next {
			ev, err := p.compute(s, pos, cur[target][pos], src)
			if err != nil {
				return nil, fmt.Errorf("step %d position %d: %w", s, pos, err)
			}
			next[pos] = ev.Value
			res.Events = append(res.Events, ev)
		}
		cur[target] = next
	}

	res.Output = dwt.Merge(cur)
	return res, nil
}
