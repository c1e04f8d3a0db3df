package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidbox/internal/audio"
	"github.com/san-kum/rigidbox/internal/config"
	"github.com/san-kum/rigidbox/internal/render"
	"github.com/san-kum/rigidbox/internal/sandbox"
	"github.com/san-kum/rigidbox/internal/tui"
)

var (
	dataDir    string
	configFile string
	profile    string
	logLevel   string
	logFile    string
	seed       int64
	watch      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rigidbox",
		Short: "interactive rigid-body sandbox",
		Long: "rigidbox drops spheres and boxes onto a floor and lets you push them around.\n" +
			"Without a subcommand it opens the interactive terminal view.",
		SilenceUsage: true,
		RunE:         runInteractive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".rigidbox", "data directory for runs and logs")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&profile, "profile", "", "profile to start from (see 'profiles')")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.Int64Var(&seed, "seed", 1, "random seed for spawns and palette")

	rootCmd.Flags().StringVar(&logFile, "log-file", "", "log file for the interactive view (default <data>/rigidbox.log)")
	rootCmd.Flags().BoolVar(&watch, "watch", true, "reload strength, bounce and speed cap when the config file changes")

	rootCmd.AddCommand(
		newRunCmd(),
		newBatchCmd(),
		newServeCmd(),
		newListCmd(),
		newPlotCmd(),
		newProfilesCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig builds the effective config: file, else profile, else defaults,
// with explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case profile != "":
		p := config.GetProfile(profile)
		if p == nil {
			return nil, fmt.Errorf("unknown profile %q (available: %v)", profile, config.ListProfiles())
		}
		cfg = p
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "rigidbox",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

// frameTime is one fixed step rounded up to whole nanoseconds, so a manual
// clock advanced by it never falls a step behind.
func frameTime(cfg *config.Config) time.Duration {
	return time.Duration(math.Ceil(cfg.Physics.FixedStep * float64(time.Second)))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	path := logFile
	if path == "" {
		path = filepath.Join(dataDir, "rigidbox.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	logger, err := newLogger(f)
	if err != nil {
		return err
	}

	term := render.NewTerminal(80, 20)
	sound := audio.NewHitSound(logger)
	sb, err := sandbox.New(cfg.Sandbox(),
		sandbox.WithRenderer(term),
		sandbox.WithSound(sound),
		sandbox.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	opts := tui.Options{Sandbox: sb, Terminal: term, Sound: sound, Profile: cfg.Profile}
	if watch && configFile != "" {
		w, err := config.Watch(configFile)
		if err != nil {
			logger.Warn("config watch disabled", "err", err)
		} else {
			defer w.Close()
			opts.Watcher = w
		}
	}
	return tui.Run(opts)
}
