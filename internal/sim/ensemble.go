package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/physarum/internal/compute"
	"github.com/san-kum/physarum/internal/metrics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Ensemble runs the same configuration under consecutive seeds
// concurrently, one goroutine per run.
type Ensemble struct {
	width, height int
	fraction      float64
	overrides     map[string]float64
	opts          []Option
	numRuns       int
	seedStart     int64
}

func NewEnsemble(width, height int, fraction float64, overrides map[string]float64, numRuns int, seedStart int64, opts ...Option) *Ensemble {
	return &Ensemble{
		width:     width,
		height:    height,
		fraction:  fraction,
		overrides: overrides,
		opts:      opts,
		numRuns:   numRuns,
		seedStart: seedStart,
	}
}

// RunResult is the outcome of one ensemble member.
type RunResult struct {
	Seed  int64
	Final metrics.Stats
	// History holds stats sampled every statsEvery steps.
	History []metrics.Stats
}

// Run advances every member by steps, sampling stats every statsEvery
// steps (0 samples only the final state). Each member steps serially.
func (e *Ensemble) Run(ctx context.Context, steps, statsEvery int) ([]RunResult, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", e.numRuns)
	}

	results := make([]RunResult, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			opts := append(append([]Option{}, e.opts...), WithSeed(seed), WithBackend(compute.NewSerialBackend()))
			eng, err := New(e.width, e.height, e.fraction, e.overrides, opts...)
			if err != nil {
				errs[idx] = err
				return
			}

			res := RunResult{Seed: seed}
			err = eng.Run(ctx, steps, func(eng *Engine) bool {
				if statsEvery > 0 && eng.StepCount()%statsEvery == 0 {
					res.History = append(res.History, eng.Stats())
				}
				return true
			})
			if err != nil {
				errs[idx] = fmt.Errorf("seed %d: %w", seed, err)
				return
			}
			res.Final = eng.Stats()
			results[idx] = res
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Summary is the mean and spread of a stats column across runs.
type Summary struct {
	Column string
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
}

// Summarize aggregates one column of the members' final stats.
func Summarize(results []RunResult, column string) (Summary, error) {
	finals := make([]metrics.Stats, len(results))
	for i, r := range results {
		finals[i] = r.Final
	}
	values, err := metrics.Column(finals, column)
	if err != nil {
		return Summary{}, err
	}
	if len(values) == 0 {
		return Summary{Column: column}, nil
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	return Summary{
		Column: column,
		Mean:   mean,
		Std:    std,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}, nil
}
