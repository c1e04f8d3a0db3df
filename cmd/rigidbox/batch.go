package main

import (
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidbox/internal/batch"
	"github.com/san-kum/rigidbox/internal/metrics"
	"github.com/san-kum/rigidbox/internal/sandbox"
)

var batchRuns int

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "run the headless sandbox once per seed in parallel and compare",
		RunE:  runBatch,
	}
	cmd.Flags().IntVar(&batchRuns, "runs", 8, "number of seeds, starting at --seed")
	cmd.Flags().Float64Var(&duration, "duration", 5, "simulated seconds per run")
	cmd.Flags().IntVar(&spheres, "spheres", 5, "random spheres to drop at start")
	cmd.Flags().IntVar(&boxes, "boxes", 5, "random boxes to drop at start")
	cmd.Flags().Float64Var(&stableSpeed, "stable-speed", 20, "speed above which a frame counts as unstable")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	if batchRuns <= 0 || duration <= 0 {
		return fmt.Errorf("runs and duration must be positive")
	}

	setup := func(sb *sandbox.Sandbox) error {
		for i := 0; i < spheres; i++ {
			if _, err := sb.SpawnRandomSphere(); err != nil {
				return err
			}
		}
		for i := 0; i < boxes; i++ {
			if _, err := sb.SpawnRandomBox(); err != nil {
				return err
			}
		}
		return nil
	}
	newMetrics := func() *metrics.Set {
		return metrics.Default(mgl64.Vec3(cfg.Physics.Gravity), stableSpeed)
	}

	e := batch.NewEnsemble(cfg.Sandbox(), batchRuns, cfg.Seed, setup, newMetrics)
	e.SetLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := e.Run(ctx, int(duration/cfg.Physics.FixedStep), frameTime(cfg))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tOBJECTS\tCULLED\tENERGY\tLOSS\tSTABILITY\tACTIVITY")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.2f\t%.0f%%\t%.2f\t%.2f\n",
			r.Seed, r.Objects, r.Culled,
			r.Metrics["energy"], 100*r.Metrics["energy_loss"],
			r.Metrics["stability"], r.Metrics["activity"],
		)
	}
	fmt.Fprintf(w, "mean\t\t\t%.2f\t%.0f%%\t%.2f\t%.2f\n",
		batch.Mean(results, "energy"), 100*batch.Mean(results, "energy_loss"),
		batch.Mean(results, "stability"), batch.Mean(results, "activity"),
	)
	return w.Flush()
}
