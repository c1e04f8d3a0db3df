// Package batch runs many headless sandboxes side by side, one per seed.
package batch

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/rigidbox/internal/metrics"
	"github.com/san-kum/rigidbox/internal/sandbox"
)

// Setup populates a freshly built sandbox before it runs.
type Setup func(sb *sandbox.Sandbox) error

// Result is the outcome of one seeded run.
type Result struct {
	Seed    int64
	Frames  int
	Objects int
	Culled  int
	Metrics map[string]float64
}

type Ensemble struct {
	cfg       sandbox.Config
	numRuns   int
	seedStart int64
	setup     Setup
	metrics   func() *metrics.Set
	logger    *log.Logger
}

// NewEnsemble prepares numRuns copies of cfg seeded seedStart, seedStart+1, ...
// newMetrics is called once per run.
func NewEnsemble(cfg sandbox.Config, numRuns int, seedStart int64, setup Setup, newMetrics func() *metrics.Set) *Ensemble {
	return &Ensemble{
		cfg:       cfg,
		numRuns:   numRuns,
		seedStart: seedStart,
		setup:     setup,
		metrics:   newMetrics,
		logger:    log.New(io.Discard),
	}
}

func (e *Ensemble) SetLogger(l *log.Logger) { e.logger = l }

// Run advances every sandbox by frames frames of frameTime on its own manual
// clock. Results are in seed order.
func (e *Ensemble) Run(ctx context.Context, frames int, frameTime time.Duration) ([]Result, error) {
	results := make([]Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = e.runOne(ctx, e.seedStart+int64(idx), frames, frameTime)
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

func (e *Ensemble) runOne(ctx context.Context, seed int64, frames int, frameTime time.Duration) (Result, error) {
	cfg := e.cfg
	cfg.Seed = seed

	ms := metrics.NewSet()
	if e.metrics != nil {
		ms = e.metrics()
	}
	sb, err := sandbox.New(cfg,
		sandbox.WithClock(sandbox.NewManualClock()),
		sandbox.WithLogger(e.logger.With("seed", seed)),
		sandbox.WithObserver(ms),
	)
	if err != nil {
		return Result{}, err
	}
	if e.setup != nil {
		if err := e.setup(sb); err != nil {
			return Result{}, err
		}
	}

	n, err := sb.Run(ctx, frames, frameTime)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Seed:    seed,
		Frames:  n,
		Objects: sb.Registry().Len(),
		Culled:  sb.Culled(),
		Metrics: ms.Values(),
	}, nil
}

// Mean averages one metric over results.
func Mean(results []Result, name string) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Metrics[name]
	}
	return sum / float64(len(results))
}
