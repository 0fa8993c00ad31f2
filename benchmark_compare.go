//go:build ignore

package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	lifting "github.com/mrjoshuak/go-lifting"
)

func main() {
	sizes := []int{64, 256, 1024, 4096}
	iterations := 10
	catalog := lifting.VC2()

	fmt.Println("=== Lifting Strategy Comparison ===")
	fmt.Println("Round trip time and peak buffering per strategy")
	fmt.Println()

	for _, name := range catalog.Names() {
		w := catalog[name]
		fmt.Println(name)
		fmt.Printf("%-8s | %-16s | %-14s | %-14s | %-10s\n", "Size", "Strategy", "Time", "Peak samples", "Memo hits")
		fmt.Println("---------+------------------+----------------+----------------+-----------")

		for _, size := range sizes {
			signal := createTestSignal(size)
			for _, s := range lifting.Strategies() {
				elapsed, res := benchmarkRoundTrip(w, signal, s, iterations)
				if res == nil {
					fmt.Printf("%-8d | %-16s | failed\n", size, s)
					continue
				}
				fmt.Printf("%-8d | %-16s | %-14s | %-14d | %-10d\n",
					size, s,
					elapsed.Round(time.Microsecond),
					peak(res.Stats),
					res.Stats.Hits)
			}
		}
		fmt.Println()
	}
}

func createTestSignal(size int) []int {
	rng := rand.New(rand.NewPCG(uint64(size), 0))
	signal := make([]int, size)
	for i := range signal {
		signal[i] = rng.IntN(1024) - 512
	}
	return signal
}

func benchmarkRoundTrip(w *lifting.Wavelet, signal []int, s lifting.Strategy, iterations int) (time.Duration, *lifting.Result) {
	opts := &lifting.Options{Strategy: s}

	// Warmup
	res, err := lifting.RoundTrip(w, signal, opts)
	if err != nil {
		return 0, nil
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		lifting.RoundTrip(w, signal, opts)
	}
	return time.Since(start) / time.Duration(iterations), res
}

// peak returns the buffering figure the strategy reports.
func peak(st lifting.Stats) int {
	if len(st.Window) > 0 {
		total := 0
		for _, n := range st.Window {
			total += n
		}
		return total
	}
	if st.Buffered > 0 {
		return st.Buffered
	}
	return st.Demands - st.Hits
}
