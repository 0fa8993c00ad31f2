package lifting

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
)

// Compare runs the same transform under several strategies concurrently
// and checks that they agree on every output sample. With no strategies
// given it runs all of them. The results are returned in strategy order.
//
// Each run is independent; the wavelet and signal are only read.
func Compare(ctx context.Context, w *Wavelet, signal []int, mode Mode, o *Options, strategies ...Strategy) ([]*Result, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if len(strategies) == 0 {
		strategies = Strategies()
	}

	results := make([]*Result, len(strategies))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range strategies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := *o
			opts.Strategy = s
			res, err := Run(w, signal, mode, &opts)
			if err != nil {
				return fmt.Errorf("%s: %w", s, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := agree(results); err != nil {
		return nil, err
	}
	return results, nil
}

// agree reports the first output sample on which any result differs from
// the first one.
func agree(results []*Result) error {
	if len(results) == 0 {
		return nil
	}
	first := results[0]
	for _, res := range results[1:] {
		idx := firstDifference(res.Output, first.Output)
		if idx < 0 {
			continue
		}
		parity, pos := dwt.Locate(idx)
		return &InternalConsistencyError{
			Ref: Ref{Parity: parity, Position: pos},
			Reason: fmt.Sprintf("%s gives %d at index %d, %s gives %d",
				res.Strategy, res.Output[idx], idx, first.Strategy, first.Output[idx]),
		}
	}
	return nil
}
