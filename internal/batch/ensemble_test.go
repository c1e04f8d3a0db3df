package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/san-kum/rigidbox/internal/metrics"
	"github.com/san-kum/rigidbox/internal/sandbox"
)

func dropTwo(sb *sandbox.Sandbox) error {
	for i := 0; i < 2; i++ {
		if _, err := sb.SpawnRandomSphere(); err != nil {
			return err
		}
	}
	return nil
}

func newSet() *metrics.Set {
	cfg := sandbox.DefaultConfig()
	return metrics.Default(cfg.Gravity, 50)
}

func TestEnsembleRunsEverySeed(t *testing.T) {
	e := NewEnsemble(sandbox.DefaultConfig(), 3, 100, dropTwo, newSet)
	results, err := e.Run(context.Background(), 30, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, r := range results {
		if r.Seed != int64(100+i) {
			t.Errorf("result %d seed = %d", i, r.Seed)
		}
		if r.Frames != 30 {
			t.Errorf("seed %d frames = %d", r.Seed, r.Frames)
		}
		if r.Objects != 3 {
			t.Errorf("seed %d objects = %d, want 3", r.Seed, r.Objects)
		}
		if _, ok := r.Metrics["energy"]; !ok {
			t.Errorf("seed %d missing energy", r.Seed)
		}
	}
}

func TestEnsembleIsDeterministic(t *testing.T) {
	run := func() []Result {
		e := NewEnsemble(sandbox.DefaultConfig(), 2, 7, dropTwo, newSet)
		results, err := e.Run(context.Background(), 60, 20*time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
		return results
	}
	a, b := run(), run()
	for i := range a {
		if a[i].Metrics["energy"] != b[i].Metrics["energy"] {
			t.Errorf("seed %d energy %v != %v", a[i].Seed, a[i].Metrics["energy"], b[i].Metrics["energy"])
		}
	}
}

func TestEnsembleSetupError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEnsemble(sandbox.DefaultConfig(), 2, 1, func(*sandbox.Sandbox) error { return boom }, nil)
	if _, err := e.Run(context.Background(), 1, 20*time.Millisecond); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestMean(t *testing.T) {
	results := []Result{
		{Metrics: map[string]float64{"energy": 2}},
		{Metrics: map[string]float64{"energy": 4}},
	}
	if got := Mean(results, "energy"); got != 3 {
		t.Errorf("mean = %v", got)
	}
	if got := Mean(nil, "energy"); got != 0 {
		t.Errorf("mean of nothing = %v", got)
	}
}
