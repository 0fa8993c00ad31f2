package lifting

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
	"github.com/mrjoshuak/go-lifting/internal/schedule"
)

// Result is the outcome of a transform.
type Result struct {
	Wavelet  string
	Mode     Mode
	Strategy Strategy

	// Input is the signal as given to the transform.
	Input []int
	// Output is the final signal. Analysis output is interleaved: low-pass
	// coefficients at even indices and high-pass ones at odd indices.
	Output []int

	// Events lists every computed sample in computation order.
	Events []Event
	Stats  Stats

	// Rows describes the signal after every stage, for display.
	Rows []Row
	// Leaves holds the stage 0 values the pipeline started from, after any
	// wavelet shift was applied.
	Leaves []int
}

// Row is the signal as it stands after one stage of the pipeline.
type Row struct {
	Name string
	// Stage is the pipeline stage this row shows; 0 is the input.
	Stage int
	// Versions names the stage holding the current even and odd values.
	Versions [2]int
}

// Low returns the low-pass (even) samples of the output.
func (r *Result) Low() []int {
	return dwt.Split(r.Output)[dwt.Even]
}

// High returns the high-pass (odd) samples of the output.
func (r *Result) High() []int {
	return dwt.Split(r.Output)[dwt.Odd]
}

// driver runs one transform of one wavelet under one strategy.
type driver struct {
	w         *Wavelet
	mode      Mode
	options   *Options
	scheduler schedule.Strategy
}

// newDriver creates a new driver.
func newDriver(w *Wavelet, mode Mode, options *Options) (*driver, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if mode != ModeAnalyze && mode != ModeSynthesize && mode != ModeRoundTrip {
		return nil, fmt.Errorf("unsupported mode: %s", mode)
	}
	s, err := options.Strategy.scheduler()
	if err != nil {
		return nil, err
	}
	return &driver{w: w, mode: mode, options: options, scheduler: s}, nil
}

// run transforms input.
func (d *driver) run(input []int) (*Result, error) {
	// Build pipeline
	p, err := d.pipeline(input)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	// Evaluate
	res, err := d.scheduler.Run(p)
	if err != nil {
		return nil, fmt.Errorf("running %s strategy: %w", d.scheduler.Name(), err)
	}

	// Verify against the inverse transform
	if d.options.Verify {
		if err := d.verify(input, res.Output); err != nil {
			return nil, fmt.Errorf("verifying %s: %w", d.mode, err)
		}
	}

	out := &Result{
		Wavelet:  d.w.Name,
		Mode:     d.mode,
		Strategy: d.options.Strategy,
		Input:    slices.Clone(input),
		Output:   d.finish(res.Output),
		Events:   res.Events,
		Stats:    res.Stats,
		Rows:     rows(p, d.mode),
		Leaves:   p.Input(),
	}

	d.options.logger().Debug("lifting transform",
		"wavelet", d.w.Name,
		"mode", d.mode.String(),
		"strategy", d.scheduler.Name(),
		"samples", len(input),
		"events", len(res.Events),
		"demands", res.Stats.Demands,
		"hits", res.Stats.Hits)

	return out, nil
}

// pipeline builds the steps for the driver's mode. Analysis input is
// scaled up by the wavelet shift first.
func (d *driver) pipeline(input []int) (*schedule.Pipeline, error) {
	switch d.mode {
	case ModeAnalyze:
		return schedule.NewPipeline(dwt.ScaleUp(input, d.w.Shift), schedule.Analysis(d.w))
	case ModeSynthesize:
		return schedule.NewPipeline(input, schedule.Synthesis(d.w))
	default:
		return schedule.NewPipeline(dwt.ScaleUp(input, d.w.Shift), schedule.Analysis(d.w), schedule.Synthesis(d.w))
	}
}

// finish scales synthesized output back down by the wavelet shift.
func (d *driver) finish(out []int) []int {
	if d.mode == ModeAnalyze {
		return out
	}
	return dwt.ScaleDown(out, d.w.Shift)
}

// verify checks raw pipeline output against the inverse transform, always
// evaluated block-wise.
func (d *driver) verify(input, out []int) error {
	var want, got []int
	switch d.mode {
	case ModeAnalyze:
		p, err := schedule.NewPipeline(out, schedule.Synthesis(d.w))
		if err != nil {
			return err
		}
		res, err := schedule.Block{}.Run(p)
		if err != nil {
			return err
		}
		want, got = input, dwt.ScaleDown(res.Output, d.w.Shift)
	case ModeSynthesize:
		p, err := schedule.NewPipeline(out, schedule.Analysis(d.w))
		if err != nil {
			return err
		}
		res, err := schedule.Block{}.Run(p)
		if err != nil {
			return err
		}
		want, got = input, res.Output
	default:
		want, got = input, dwt.ScaleDown(out, d.w.Shift)
	}

	if i := firstDifference(got, want); i >= 0 {
		parity, pos := dwt.Locate(i)
		return &InternalConsistencyError{
			Ref:    Ref{Parity: parity, Position: pos},
			Reason: fmt.Sprintf("inverse transform gives %d at index %d, want %d", got[i], i, want[i]),
		}
	}
	return nil
}

// firstDifference returns the first index at which a and b differ, or -1.
// Both must have the same length.
func firstDifference(a, b []int) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

// rows names the signal after every stage the way a reader follows the
// transform: input, intermediates, coefficients and output.
func rows(p *schedule.Pipeline, mode Mode) []Row {
	bounds := p.Boundaries()
	out := []Row{{Name: "Input", Stage: 0, Versions: p.Versions(0)}}

	from := 0
	for phase, to := range bounds {
		prefix, final := "Encode", "Coefficients"
		if mode == ModeSynthesize || phase > 0 {
			prefix, final = "Decode", "Output"
		}
		for s := from + 1; s <= to; s++ {
			name := prefix + " Intermediate " + strconv.Itoa(s-from)
			if s == to {
				name = final
			}
			out = append(out, Row{Name: name, Stage: s, Versions: p.Versions(s)})
		}
		from = to
	}
	return out
}
