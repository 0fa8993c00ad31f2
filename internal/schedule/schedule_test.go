package schedule

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-lifting/internal/dwt"
	"github.com/mrjoshuak/go-lifting/internal/vc2"
)

func strategies() []Strategy {
	return []Strategy{Block{}, Chained{}, Lazy{}, LazyTwoStep{}}
}

func wavelet(t testing.TB, i vc2.Index) *dwt.Wavelet {
	t.Helper()
	w, err := vc2.Wavelet(i)
	require.NoError(t, err)
	return w
}

func roundTrip(t testing.TB, w *dwt.Wavelet, input []int) *Pipeline {
	t.Helper()
	p, err := NewPipeline(input, Analysis(w), Synthesis(w))
	require.NoError(t, err)
	return p
}

func randomSignal(r *rand.Rand, n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = r.IntN(512) - 256
	}
	return s
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		s, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}
	_, err := New("eager")
	assert.Error(t, err)
}

func TestNewPipeline_Errors(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)

	_, err := NewPipeline([]int{1}, Analysis(w))
	assert.ErrorIs(t, err, dwt.ErrShortSignal)

	_, err = NewPipeline([]int{1, 2, 3}, nil, nil)
	var cfgErr *dwt.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestPipeline_Versions(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)
	p := roundTrip(t, w, []int{1, 2, 3, 4, 5})

	// predict(odd), update(even), then synthesis update(even), predict(odd)
	assert.Equal(t, [2]int{0, 0}, p.Versions(0))
	assert.Equal(t, [2]int{0, 1}, p.Versions(1))
	assert.Equal(t, [2]int{2, 1}, p.Versions(2))
	assert.Equal(t, [2]int{3, 1}, p.Versions(3))
	assert.Equal(t, [2]int{3, 4}, p.Versions(4))
	assert.Equal(t, []int{2, 4}, p.Boundaries())
	assert.Equal(t, [2]int{3, 2}, p.Lengths())
}

func TestStrategies_HaarScenario(t *testing.T) {
	w := wavelet(t, vc2.HaarNoShift)

	for _, s := range strategies() {
		t.Run(s.Name(), func(t *testing.T) {
			p, err := NewPipeline([]int{1, 3, 5, 7}, Analysis(w))
			require.NoError(t, err)
			res, err := s.Run(p)
			require.NoError(t, err)
			assert.Equal(t, []int{2, 2, 6, 2}, res.Output)

			p, err = NewPipeline(res.Output, Synthesis(w))
			require.NoError(t, err)
			res, err = s.Run(p)
			require.NoError(t, err)
			assert.Equal(t, []int{1, 3, 5, 7}, res.Output)
		})
	}
}

func TestStrategies_LeGallExample(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)

	for _, s := range strategies() {
		t.Run(s.Name(), func(t *testing.T) {
			p, err := NewPipeline([]int{10, 20, 30, 40}, Analysis(w))
			require.NoError(t, err)
			res, err := s.Run(p)
			require.NoError(t, err)
			assert.Equal(t, []int{10, 0, 33, 10}, res.Output)
		})
	}
}

func TestStrategies_EquivalentAndReversible(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for _, idx := range vc2.Indices() {
		w := wavelet(t, idx)
		for n := 2; n <= 64; n++ {
			input := randomSignal(r, n)

			analysis, err := NewPipeline(input, Analysis(w))
			require.NoError(t, err)
			full := roundTrip(t, w, input)

			var want []int
			for _, s := range strategies() {
				coeffs, err := s.Run(analysis)
				require.NoError(t, err, "%s %s n=%d", idx, s.Name(), n)
				if want == nil {
					want = coeffs.Output
				} else if diff := cmp.Diff(want, coeffs.Output); diff != "" {
					t.Fatalf("%s %s n=%d analysis mismatch (-block +got):\n%s", idx, s.Name(), n, diff)
				}

				res, err := s.Run(full)
				require.NoError(t, err, "%s %s n=%d", idx, s.Name(), n)
				if diff := cmp.Diff(input, res.Output); diff != "" {
					t.Fatalf("%s %s n=%d round trip mismatch (-input +got):\n%s", idx, s.Name(), n, diff)
				}
			}
		}
	}
}

// eventSet maps each computed value to the event that computed it.
func eventSet(t *testing.T, events []dwt.Event) map[dwt.Ref]dwt.Event {
	t.Helper()
	set := make(map[dwt.Ref]dwt.Event, len(events))
	for _, ev := range events {
		_, dup := set[ev.Ref()]
		require.False(t, dup, "%s computed twice", ev.Ref())
		set[ev.Ref()] = ev
	}
	return set
}

func TestStrategies_SameEvents(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))

	for _, idx := range []vc2.Index{vc2.LeGall53, vc2.Fidelity, vc2.Daubechies97, vc2.DeslauriersDubuc97} {
		w := wavelet(t, idx)
		for _, n := range []int{7, 16} {
			p := roundTrip(t, w, randomSignal(r, n))

			block, err := Block{}.Run(p)
			require.NoError(t, err)
			want := eventSet(t, block.Events)

			// Every step computes each position of the parity it writes once.
			lengths := p.Lengths()
			total := 0
			for s := 1; s <= p.NumSteps(); s++ {
				total += lengths[p.Step(s).Stage.Target()]
			}
			require.Len(t, block.Events, total)

			for _, s := range []Strategy{Chained{}, Lazy{}, LazyTwoStep{}} {
				res, err := s.Run(p)
				require.NoError(t, err)
				got := eventSet(t, res.Events)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("%s %s n=%d events differ (-block +got):\n%s", idx, s.Name(), n, diff)
				}
			}
		}
	}
}

func TestEvents_InputsNameProducers(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)
	p := roundTrip(t, w, []int{4, 8, 15, 16, 23, 42})

	res, err := Block{}.Run(p)
	require.NoError(t, err)
	computed := eventSet(t, res.Events)

	for _, ev := range res.Events {
		require.Equal(t, 1+len(p.Step(ev.Stage).Stage.Taps), len(ev.Inputs), ev.String())
		assert.Equal(t, ev.Parity, ev.Inputs[0].Parity)
		assert.Equal(t, ev.Position, ev.Inputs[0].Position)
		for _, in := range ev.Inputs {
			assert.Less(t, in.Stage, ev.Stage)
			if in.Stage > 0 {
				assert.Contains(t, computed, in, "%s reads an uncomputed value", ev.Ref())
			}
		}
	}
}

func TestBlock_StageOrder(t *testing.T) {
	w := wavelet(t, vc2.DeslauriersDubuc137)
	p := roundTrip(t, w, []int{9, 1, 8, 2, 7, 3, 6, 4, 5})

	res, err := Block{}.Run(p)
	require.NoError(t, err)

	for i := 1; i < len(res.Events); i++ {
		prev, cur := res.Events[i-1], res.Events[i]
		if cur.Stage == prev.Stage {
			assert.Equal(t, prev.Position+1, cur.Position)
		} else {
			assert.Equal(t, prev.Stage+1, cur.Stage)
			assert.Equal(t, 0, cur.Position)
		}
	}
	assert.Equal(t, 9+5, res.Stats.Buffered)
}

func TestLazy_MemoizesEveryValue(t *testing.T) {
	for _, s := range []Strategy{Lazy{}, LazyTwoStep{}} {
		t.Run(s.Name(), func(t *testing.T) {
			w := wavelet(t, vc2.DeslauriersDubuc97)
			p := roundTrip(t, w, randomSignal(rand.New(rand.NewPCG(5, 6)), 24))

			res, err := s.Run(p)
			require.NoError(t, err)
			eventSet(t, res.Events)

			assert.Equal(t, res.Stats.Demands-res.Stats.Hits, len(res.Events))
			assert.Positive(t, res.Stats.Hits)
		})
	}
}

func TestEvaluator_RepeatedDemandIsHit(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)
	p := roundTrip(t, w, []int{1, 2, 3, 4, 5, 6, 7, 8})
	e := NewEvaluator(p)

	v1, err := e.Output(3)
	require.NoError(t, err)
	n := len(e.Events())
	hits := e.Stats().Hits

	v2, err := e.Output(3)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 4, v1)
	assert.Len(t, e.Events(), n)
	assert.Equal(t, hits+1, e.Stats().Hits)
}

func TestEvaluator_RangeError(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)
	p := roundTrip(t, w, []int{1, 2, 3, 4, 5})
	e := NewEvaluator(p)

	for _, idx := range []int{-1, 5, 100} {
		_, err := e.Output(idx)
		var rangeErr *dwt.RangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, idx, rangeErr.Position)
		assert.Equal(t, 5, rangeErr.Length)
	}
	assert.Empty(t, e.Events())
}

func TestEvaluator_UnknownRef(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)
	p := roundTrip(t, w, []int{1, 2, 3, 4})
	e := NewEvaluator(p)

	// Step 1 writes odd samples only.
	_, err := e.Value(dwt.Ref{Stage: 1, Parity: dwt.Even, Position: 0})
	var icErr *dwt.InternalConsistencyError
	assert.ErrorAs(t, err, &icErr)
}

// cone collects every computed value final depends on, using the complete
// dependency graph recorded by a block run.
func cone(graph map[dwt.Ref]dwt.Event, final dwt.Ref, seen map[dwt.Ref]bool) {
	ev, ok := graph[final]
	if !ok || seen[final] {
		return
	}
	seen[final] = true
	for _, in := range ev.Inputs {
		cone(graph, in, seen)
	}
}

func TestLazy_PartialDemand(t *testing.T) {
	for _, idx := range []vc2.Index{vc2.LeGall53, vc2.Fidelity, vc2.HaarNoShift} {
		t.Run(idx.String(), func(t *testing.T) {
			w := wavelet(t, idx)
			p := roundTrip(t, w, randomSignal(rand.New(rand.NewPCG(7, 8)), 32))

			block, err := Block{}.Run(p)
			require.NoError(t, err)
			graph := eventSet(t, block.Events)

			e := NewEvaluator(p)
			v, err := e.Output(0)
			require.NoError(t, err)
			assert.Equal(t, p.Input()[0], v)

			final := dwt.Ref{Stage: p.Version(p.NumSteps(), dwt.Even), Parity: dwt.Even, Position: 0}
			want := map[dwt.Ref]bool{}
			cone(graph, final, want)

			require.Len(t, e.Events(), len(want))
			for _, ev := range e.Events() {
				assert.True(t, want[ev.Ref()], "%s outside the dependency cone of output 0", ev.Ref())
			}
			assert.Less(t, len(e.Events()), len(block.Events))
		})
	}
}

func TestLazy_InterleavesPhases(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)
	p := roundTrip(t, w, randomSignal(rand.New(rand.NewPCG(9, 10)), 16))
	boundary := p.Boundaries()[0]

	res, err := Lazy{}.Run(p)
	require.NoError(t, err)
	assert.True(t, phasesInterleave(res.Events, boundary), "lazy should start decoding before encoding finishes")

	res, err = LazyTwoStep{}.Run(p)
	require.NoError(t, err)
	assert.False(t, phasesInterleave(res.Events, boundary), "lazy_two_steps must finish encoding first")
}

func phasesInterleave(events []dwt.Event, boundary int) bool {
	decoding := false
	for _, ev := range events {
		if ev.Stage > boundary {
			decoding = true
		} else if decoding {
			return true
		}
	}
	return false
}

func TestChained_InterleavesStages(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)
	p := roundTrip(t, w, randomSignal(rand.New(rand.NewPCG(11, 12)), 16))

	res, err := Chained{}.Run(p)
	require.NoError(t, err)

	// The last step starts long before the first one ends.
	firstLast, lastFirst := -1, -1
	for i, ev := range res.Events {
		if ev.Stage == 1 {
			lastFirst = i
		}
		if ev.Stage == p.NumSteps() && firstLast < 0 {
			firstLast = i
		}
	}
	assert.Less(t, firstLast, lastFirst)
}

func TestChained_BoundedWindow(t *testing.T) {
	for _, idx := range vc2.Indices() {
		t.Run(idx.String(), func(t *testing.T) {
			w := wavelet(t, idx)
			r := rand.New(rand.NewPCG(13, 14))

			var windows [][]int
			for _, n := range []int{40, 64, 101} {
				p := roundTrip(t, w, randomSignal(r, n))
				res, err := Chained{}.Run(p)
				require.NoError(t, err)
				require.Len(t, res.Stats.Window, p.NumSteps())
				for s, held := range res.Stats.Window {
					assert.LessOrEqual(t, held, WindowBound(p, s+1), "step %d n=%d", s+1, n)
				}
				windows = append(windows, res.Stats.Window)
			}
			assert.Equal(t, windows[0], windows[1])
			assert.Equal(t, windows[0], windows[2])
		})
	}
}

// The LeGall round trip has delays 1, 1, 1, 2. Each node peaks while the
// output queue of its source still holds the samples it has not yet drawn.
func TestChained_LeGallWindow(t *testing.T) {
	w := wavelet(t, vc2.LeGall53)
	for _, n := range []int{40, 101} {
		input := make([]int, n)
		for i := range input {
			input[i] = i
		}
		p := roundTrip(t, w, input)
		res, err := Chained{}.Run(p)
		require.NoError(t, err)
		assert.Equal(t, []int{7, 5, 7, 5}, res.Stats.Window, "n=%d", n)
		for s := 1; s <= p.NumSteps(); s++ {
			assert.Equal(t, WindowBound(p, s), res.Stats.Window[s-1], "step %d n=%d", s, n)
		}
	}
}

func TestRing(t *testing.T) {
	r := newRing(3)
	for i := 0; i < 5; i++ {
		r.push(i * 10)
	}
	for pos, want := range map[int]int{2: 20, 3: 30, 4: 40} {
		v, ok := r.at(pos)
		require.True(t, ok, fmt.Sprint(pos))
		assert.Equal(t, want, v)
	}
	for _, pos := range []int{-1, 0, 1, 5} {
		_, ok := r.at(pos)
		assert.False(t, ok, fmt.Sprint(pos))
	}
	assert.Equal(t, 3, r.held())
}

func TestQueue_PullOnce(t *testing.T) {
	var q queue
	q.push(7)
	q.push(8)

	v, ok := q.pop(0)
	require.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = q.pop(0)
	assert.False(t, ok, "position 0 already pulled")

	v, ok = q.pop(1)
	require.True(t, ok)
	assert.Equal(t, 8, v)
	assert.Zero(t, q.len())
}

func TestStream_RejectsFuturePull(t *testing.T) {
	s := &stream{leaves: dwt.Split([]int{1, 2, 3, 4})}
	_, err := s.pull(dwt.Even, 1)
	var icErr *dwt.InternalConsistencyError
	require.True(t, errors.As(err, &icErr))
}

func BenchmarkStrategies(b *testing.B) {
	w := wavelet(b, vc2.DeslauriersDubuc137)
	p := roundTrip(b, w, randomSignal(rand.New(rand.NewPCG(1, 1)), 64))
	for _, s := range strategies() {
		b.Run(s.Name(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := s.Run(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
