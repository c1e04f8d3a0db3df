package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidbox/internal/config"
	"github.com/san-kum/rigidbox/internal/storage"
)

var force bool

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot object count and mean height of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "list built-in profiles",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROFILE\tDESCRIPTION")
			for _, name := range config.ListProfiles() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.ProfileDescription(name))
			}
			w.Flush()
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file for the selected profile",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "rigidbox.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if profile != "" {
		if cfg = config.GetProfile(profile); cfg == nil {
			return fmt.Errorf("unknown profile %q", profile)
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s (profile %s)\n", path, cfg.Profile)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROFILE\tTIME\tDURATION\tFRAMES\tPEAK\tCULLED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.0f\t%.0f\t%.0f\n",
			run.ID,
			run.Profile,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Stats["frames"],
			run.Stats["peak_objects"],
			run.Stats["culled"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.New("no data to plot")
	}

	var counts, heights []float64
	tick := samples[0].Tick
	n, sum := 0, 0.0
	flush := func() {
		counts = append(counts, float64(n))
		heights = append(heights, sum/float64(n))
	}
	for _, s := range samples {
		if s.Tick != tick {
			flush()
			tick, n, sum = s.Tick, 0, 0
		}
		n++
		sum += s.Object.Position[1]
	}
	flush()

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("profile: %s\n", meta.Profile)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, p := range []struct {
		data    []float64
		caption string
	}{
		{counts, "objects"},
		{heights, "mean height"},
	} {
		if len(p.data) < 2 {
			continue
		}
		fmt.Println(asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		))
		fmt.Println()
	}
	return nil
}
