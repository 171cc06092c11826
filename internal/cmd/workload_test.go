package cmd

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/Iron-Ham/clusterexec/internal/config"
)

func TestRastrigin(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		want float64
	}{
		{name: "origin", x: []float64{0, 0, 0}, want: 0},
		{name: "empty", x: nil, want: 0},
		{name: "integer point", x: []float64{1, -1}, want: 2},
		{name: "half point", x: []float64{0.5}, want: 20.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rastrigin(tt.x); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("rastrigin(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestDemoParams(t *testing.T) {
	demo := config.DemoConfig{Dimensions: 4, Seed: 42}

	params := demoParams(demo, 25)
	if len(params) != 25 {
		t.Fatalf("len(params) = %d, want 25", len(params))
	}
	for i, x := range params {
		if len(x) != 4 {
			t.Fatalf("params[%d] has %d dimensions, want 4", i, len(x))
		}
		for _, v := range x {
			if v < -rastriginBound || v > rastriginBound {
				t.Errorf("params[%d] = %v, outside [-%v, %v]", i, x, rastriginBound, rastriginBound)
			}
		}
	}

	again := demoParams(demo, 25)
	for i := range params {
		if !slices.Equal(params[i], again[i]) {
			t.Fatalf("same seed produced different params at %d: %v vs %v", i, params[i], again[i])
		}
	}
}

func TestDemoCompute_InjectsFailures(t *testing.T) {
	compute := demoCompute(config.DemoConfig{FailEvery: 3})

	var failures int
	for range 9 {
		if _, err := compute(context.Background(), []float64{0}); err != nil {
			failures++
		}
	}
	if failures != 3 {
		t.Errorf("failures = %d, want 3", failures)
	}
}

func TestDemoCompute_ReturnsRastrigin(t *testing.T) {
	compute := demoCompute(config.DemoConfig{})

	got, err := compute(context.Background(), []float64{1, -1})
	if err != nil {
		t.Fatalf("compute() error = %v", err)
	}
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("compute() = %v, want 2", got)
	}
}

func TestDemoCompute_DelayRespectsContext(t *testing.T) {
	compute := demoCompute(config.DemoConfig{TaskDelayMs: 60000})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := compute(ctx, []float64{0})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("compute() error = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("compute ignored context cancellation")
	}
}
