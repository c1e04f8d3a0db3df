package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidbox/internal/audio"
	"github.com/san-kum/rigidbox/internal/metrics"
	"github.com/san-kum/rigidbox/internal/sandbox"
	"github.com/san-kum/rigidbox/internal/storage"
)

var (
	duration    float64
	spheres     int
	boxes       int
	sampleEvery int
	save        bool
	exportPath  string
	stableSpeed float64
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the sandbox headless on a simulated clock",
		RunE:  runHeadless,
	}
	cmd.Flags().Float64Var(&duration, "duration", 5, "simulated seconds")
	cmd.Flags().IntVar(&spheres, "spheres", 5, "random spheres to drop at start")
	cmd.Flags().IntVar(&boxes, "boxes", 5, "random boxes to drop at start")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", 6, "record every Nth frame")
	cmd.Flags().BoolVar(&save, "save", false, "save the run under the data directory")
	cmd.Flags().StringVar(&exportPath, "export", "", "also write the run to a single JSON file")
	cmd.Flags().Float64Var(&stableSpeed, "stable-speed", 20, "speed above which a frame counts as unstable")
	return cmd
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}

	rec := storage.NewRecorder(sampleEvery)
	ms := metrics.Default(mgl64.Vec3(cfg.Physics.Gravity), stableSpeed)
	sound := audio.NewHitSound(logger)
	sb, err := sandbox.New(cfg.Sandbox(),
		sandbox.WithClock(sandbox.NewManualClock()),
		sandbox.WithSound(sound),
		sandbox.WithLogger(logger),
		sandbox.WithObserver(rec),
		sandbox.WithObserver(ms),
	)
	if err != nil {
		return err
	}
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	step := frameTime(cfg)
	frames := int(duration / cfg.Physics.FixedStep)
	n, err := sb.Run(ctx, frames, step)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats := rec.Stats()
	for name, v := range ms.Values() {
		stats[name] = v
	}
	fmt.Printf("profile: %s\n", cfg.Profile)
	fmt.Printf("frames: %d  steps: %d  simulated: %.2fs\n", n, sb.World().Steps(), sb.World().Time())
	fmt.Printf("objects: %d  peak: %.0f  culled: %.0f  hits: %d\n",
		sb.Registry().Len(), stats["peak_objects"], stats["culled"], sound.Plays())
	fmt.Printf("energy: %.2f  loss: %.0f%%  stability: %.2f  activity: %.2f\n\n",
		stats["energy"], 100*stats["energy_loss"], stats["stability"], stats["activity"])

	if counts := rec.Counts(); len(counts) > 1 {
		fmt.Println(asciigraph.Plot(counts,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("objects over time"),
		))
		fmt.Println()
	}

	meta := storage.RunMetadata{
		Profile:   cfg.Profile,
		Seed:      cfg.Seed,
		FixedStep: cfg.Physics.FixedStep,
		Duration:  sb.World().Time(),
		Spawned:   spheres + boxes + initialCount(cfg.Spawn.InitialSphere),
		Stats:     stats,
	}
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(meta, rec)
		if err != nil {
			return err
		}
		meta.ID = runID
		fmt.Printf("saved: %s\n", runID)
	}
	if exportPath != "" {
		if err := storage.ExportJSON(exportPath, meta, rec.Samples()); err != nil {
			return err
		}
		fmt.Printf("exported: %s\n", exportPath)
	}
	return nil
}

func initialCount(initial bool) int {
	if initial {
		return 1
	}
	return 0
}
