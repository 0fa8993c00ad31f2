// Command liftviz animates the order in which a lifting wavelet transform
// computes its samples.
//
// Usage:
//
//	liftviz --wavelet le_gall_5_3 --order lazy
//	liftviz -w 3 -n 8 --input ascending --display terminalizer > anim.yml
//	liftviz --values 1,3,5,7 --mode analyze --display events
//	liftviz compare -w fidelity -n 64
//	liftviz list
//
// The animation shows every row of a round trip, from encoder input through
// the transform coefficients to the decoder output, one computed sample per
// frame.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	lifting "github.com/mrjoshuak/go-lifting"
	"github.com/mrjoshuak/go-lifting/internal/render"
	"github.com/mrjoshuak/go-lifting/internal/vc2"
)

// Display modes.
const (
	displayTerminal     = "terminal"
	displayTerminalizer = "terminalizer"
	displayEvents       = "events"
)

// config holds the command line settings.
type config struct {
	wavelet   string
	input     string
	values    string
	numValues int
	order     string
	mode      string
	display   string
	delay     time.Duration
	width     int
	seed      uint64
	verbose   bool
}

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &config{}
	root := &cobra.Command{
		Use:          "liftviz",
		Short:        "Animate the computation order of lifting wavelet transforms",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.animate(cmd.Context(), stdout, c.logger(stderr))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	addFlags(root.PersistentFlags(), c)

	root.AddCommand(newListCommand(stdout), newCompareCommand(c, stdout, stderr))
	return root
}

func addFlags(fs *pflag.FlagSet, c *config) {
	fs.StringVarP(&c.wavelet, "wavelet", "w", vc2.LeGall53.String(), "wavelet name or VC-2 wavelet index")
	fs.StringVarP(&c.input, "input", "i", "random", "input values: ascending or random")
	fs.StringVar(&c.values, "values", "", "comma separated input values, overriding --input")
	fs.IntVarP(&c.numValues, "num-values", "n", 16, "length of the signal")
	fs.StringVarP(&c.order, "order", "o", lifting.StrategyBlock.String(),
		"computation order: "+strings.Join(lo.Map(lifting.Strategies(), func(s lifting.Strategy, _ int) string { return s.String() }), ", "))
	fs.StringVarP(&c.mode, "mode", "m", lifting.ModeRoundTrip.String(), "transform: analyze, synthesize or round_trip")
	fs.StringVarP(&c.display, "display", "D", displayTerminal, "output: terminal, terminalizer or events")
	fs.DurationVarP(&c.delay, "delay", "d", 25*time.Millisecond, "delay between animation frames")
	fs.IntVar(&c.width, "box-width", 0, "width of one array cell, 0 to fit the values")
	fs.Uint64Var(&c.seed, "seed", 0, "seed for random input, 0 for a time based seed")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "log debug information to stderr")
}

func (c *config) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// lookup resolves --wavelet by name or VC-2 index.
func (c *config) lookup() (*lifting.Wavelet, error) {
	idx, err := vc2.Parse(c.wavelet)
	if err != nil {
		return nil, err
	}
	return lifting.VC2().Lookup(idx.String())
}

func (c *config) parseMode() (lifting.Mode, error) {
	for _, m := range []lifting.Mode{lifting.ModeAnalyze, lifting.ModeSynthesize, lifting.ModeRoundTrip} {
		if m.String() == c.mode {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", c.mode)
}

// signal builds the input signal from --values or --input.
func (c *config) signal() ([]int, error) {
	if c.values != "" {
		var errs []error
		values := lo.FilterMap(strings.Split(c.values, ","), func(s string, _ int) (int, bool) {
			v, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				errs = append(errs, err)
				return 0, false
			}
			return v, true
		})
		if len(errs) > 0 {
			return nil, fmt.Errorf("parsing --values: %w", errs[0])
		}
		return values, nil
	}

	if c.numValues < 0 {
		return nil, fmt.Errorf("--num-values must not be negative, got %d", c.numValues)
	}
	switch c.input {
	case "ascending":
		return lo.Range(c.numValues), nil
	case "random":
		seed := c.seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed>>32))
		return lo.Times(c.numValues, func(int) int { return rng.IntN(100) }), nil
	default:
		return nil, fmt.Errorf("unknown input %q", c.input)
	}
}

// animate runs one transform and displays its events.
func (c *config) animate(ctx context.Context, w io.Writer, logger *slog.Logger) error {
	wavelet, err := c.lookup()
	if err != nil {
		return err
	}
	strategy, err := lifting.ParseStrategy(c.order)
	if err != nil {
		return err
	}
	mode, err := c.parseMode()
	if err != nil {
		return err
	}
	signal, err := c.signal()
	if err != nil {
		return err
	}

	opts := lifting.DefaultOptions()
	opts.Strategy = strategy
	opts.Logger = logger
	res, err := lifting.Run(wavelet, signal, mode, opts)
	if err != nil {
		return err
	}
	logger.Debug("animation ready", "rows", len(res.Rows), "frames", len(res.Events)+1)

	tr := trace(res)
	switch c.display {
	case displayTerminal:
		return render.Play(ctx, w, render.NewAnimation(tr, c.width), c.delay)
	case displayTerminalizer:
		return render.WriteTerminalizer(w, render.NewAnimation(tr, c.width), c.delay)
	case displayEvents:
		return render.WriteEvents(w, tr)
	default:
		return fmt.Errorf("unknown display %q", c.display)
	}
}

// trace converts a transform result for drawing.
func trace(res *lifting.Result) render.Trace {
	return render.Trace{
		Title: res.Wavelet + " " + res.Mode.String() + " (" + res.Strategy.String() + ")",
		Rows: lo.Map(res.Rows, func(r lifting.Row, _ int) render.Row {
			return render.Row{Name: r.Name, Versions: r.Versions}
		}),
		Leaves: res.Leaves,
		Events: res.Events,
	}
}

func newListCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the VC-2 wavelets",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			catalog := lifting.VC2()
			for _, idx := range vc2.Indices() {
				w := catalog[idx.String()]
				_, err := fmt.Fprintf(stdout, "%d  %-24s %-24s stages=%d shift=%d\n",
					int(idx), idx, render.Title(idx.String()), len(w.Stages), w.Shift)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCompareCommand(c *config, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Run every computation order and compare their work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wavelet, err := c.lookup()
			if err != nil {
				return err
			}
			mode, err := c.parseMode()
			if err != nil {
				return err
			}
			signal, err := c.signal()
			if err != nil {
				return err
			}
			opts := lifting.DefaultOptions()
			opts.Logger = c.logger(stderr)

			results, err := lifting.Compare(cmd.Context(), wavelet, signal, mode, opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout, "%-16s %8s %8s %8s %10s  %s\n", "order", "events", "demands", "hits", "buffered", "window")
			if err != nil {
				return err
			}
			for _, res := range results {
				_, err := fmt.Fprintf(stdout, "%-16s %8d %8d %8d %10d  %v\n",
					res.Strategy, len(res.Events), res.Stats.Demands, res.Stats.Hits, res.Stats.Buffered, res.Stats.Window)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}
