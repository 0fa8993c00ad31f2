package lifting

import (
	"slices"
	"testing"
)

// fuzzSignal turns fuzz bytes into a small signed signal.
func fuzzSignal(data []byte) []int {
	s := make([]int, len(data))
	for i, b := range data {
		s[i] = int(int8(b))
	}
	return s
}

// FuzzRoundTrip checks that every strategy reconstructs arbitrary input.
// Run with: go test -fuzz=FuzzRoundTrip -fuzztime=60s
func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte{1, 3, 5, 7}, uint8(0), uint8(0))
	f.Add([]byte{0x80, 0x7F}, uint8(5), uint8(1))
	f.Add([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0}, uint8(6), uint8(3))
	f.Add([]byte{}, uint8(2), uint8(2))

	names := VC2().Names()
	f.Fuzz(func(t *testing.T, data []byte, wavelet, strategy uint8) {
		if len(data) > 256 {
			data = data[:256]
		}
		w := VC2()[names[int(wavelet)%len(names)]]
		opts := DefaultOptions()
		opts.Strategy = Strategies()[int(strategy)%len(Strategies())]

		signal := fuzzSignal(data)
		res, err := RoundTrip(w, signal, opts)
		if len(signal) < 2 {
			if err == nil {
				t.Fatalf("RoundTrip(%v) succeeded on a short signal", signal)
			}
			return
		}
		if err != nil {
			t.Fatalf("RoundTrip(%v) error: %v", signal, err)
		}
		if !slices.Equal(res.Output, signal) {
			t.Fatalf("RoundTrip(%v) = %v", signal, res.Output)
		}
	})
}

// FuzzAnalyze checks that the strategies agree on analysis output.
func FuzzAnalyze(f *testing.F) {
	f.Add([]byte{10, 20, 30, 40}, uint8(1))
	f.Add([]byte{0xFF, 0x00, 0xFF, 0x00, 0xFF}, uint8(3))

	names := VC2().Names()
	f.Fuzz(func(t *testing.T, data []byte, wavelet uint8) {
		if len(data) < 2 || len(data) > 128 {
			return
		}
		w := VC2()[names[int(wavelet)%len(names)]]
		signal := fuzzSignal(data)

		var want []int
		for _, s := range Strategies() {
			res, err := Analyze(w, signal, &Options{Strategy: s})
			if err != nil {
				t.Fatalf("%s: Analyze(%v) error: %v", s, signal, err)
			}
			if want == nil {
				want = res.Output
				continue
			}
			if !slices.Equal(res.Output, want) {
				t.Fatalf("%s: Analyze(%v) = %v, block gives %v", s, signal, res.Output, want)
			}
		}
	})
}
