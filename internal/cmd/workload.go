package cmd

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/clusterexec/internal/config"
	"github.com/Iron-Ham/clusterexec/internal/overseer"
)

// rastriginBound is the usual search domain of the Rastrigin function.
const rastriginBound = 5.12

// rastrigin evaluates f(x) = 10n + sum(x_i^2 - 10cos(2*pi*x_i)). The global
// minimum is 0 at the origin.
func rastrigin(x []float64) float64 {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

// demoCompute returns the overseer computation for the demo workload. Each
// call sleeps for the configured delay and every FailEvery-th call fails.
func demoCompute(demo config.DemoConfig) overseer.ComputeFunc[[]float64, float64] {
	var calls atomic.Int64
	delay := demo.TaskDelay()

	return func(ctx context.Context, x []float64) (float64, error) {
		n := calls.Add(1)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return 0, ctx.Err()
			case <-timer.C:
			}
		}
		if demo.FailEvery > 0 && n%int64(demo.FailEvery) == 0 {
			return 0, fmt.Errorf("injected failure on call %d", n)
		}
		return rastrigin(x), nil
	}
}

// demoParams generates count random points in the Rastrigin domain.
func demoParams(demo config.DemoConfig, count int) [][]float64 {
	seed := uint64(demo.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([][]float64, count)
	for i := range out {
		x := make([]float64, demo.Dimensions)
		for j := range x {
			x[j] = (rng.Float64()*2 - 1) * rastriginBound
		}
		out[i] = x
	}
	return out
}
