package xtesting

import (
	"context"
	"testing"
	"time"
)

// hookTimeout caps the duration of each setup, pre and post hook.
const hookTimeout = 30 * time.Second

// Benchmark benchmarks fn.
//
// It calls the setup function once before the first iteration. The pre and
// post functions are called before and after each iteration, respectively.
//
// Only the time spent in fn is measured.
func Benchmark(
	b *testing.B,
	setup func(context.Context) error,
	pre func(context.Context) error,
	fn func(context.Context) error,
	post func(context.Context) error,
) {
	ctx := b.Context()

	checkIterationThreshold(b)

	hook := func(h func(context.Context) error) {
		if h == nil {
			return
		}

		ctx, cancel := context.WithTimeout(ctx, hookTimeout)
		defer cancel()

		if err := h(ctx); err != nil {
			b.Fatal(err)
		}
	}

	hook(setup)

	for b.Loop() {
		b.StopTimer()
		hook(pre)

		b.StartTimer()
		err := fn(ctx)
		b.StopTimer()

		hook(post)

		if err != nil {
			b.Fatal(err)
		}
	}
}

// checkIterationThreshold skips the benchmark if the number of iterations is
// too high.
//
// This usually occurs when the benchmarking framework is unable to measure the
// duration of each iteration, typically because the benchmarked code is "too
// fast".
func checkIterationThreshold(b *testing.B) {
	const threshold = 1_000_000
	if b.N >= threshold {
		b.Skipf("benchmark skipped, too many iterations (%d); benchmarked code is likely too fast to measure meaningfully", b.N)
	}
}
