package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rigidbox/internal/audio"
	"github.com/san-kum/rigidbox/internal/sandbox"
	"github.com/san-kum/rigidbox/internal/stream"
)

var (
	addr       string
	spawnEvery time.Duration
	maxObjects int
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the sandbox in real time and stream frames over a websocket",
		RunE:  serve,
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&spawnEvery, "spawn-every", 2*time.Second, "drop a random object this often (0 disables)")
	cmd.Flags().IntVar(&maxObjects, "max-objects", 30, "remove the oldest object beyond this many")
	return cmd
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	hub := stream.NewHub(logger.WithPrefix("stream"))
	sb, err := sandbox.New(cfg.Sandbox(),
		sandbox.WithSound(audio.NewHitSound(logger)),
		sandbox.WithLogger(logger),
		sandbox.WithObserver(hub),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok %d\n", hub.Clients())
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go hub.Run(ctx)
	logger.Info("streaming", "addr", addr, "path", "/ws", "profile", cfg.Profile)

	err = driveRealtime(ctx, sb, frameTime(cfg), errc)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("shutdown", "err", serr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// driveRealtime ticks the sandbox on the wall clock and keeps dropping
// objects, removing the oldest once there are too many.
func driveRealtime(ctx context.Context, sb *sandbox.Sandbox, interval time.Duration, errc <-chan error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var spawn <-chan time.Time
	if spawnEvery > 0 {
		spawnTicker := time.NewTicker(spawnEvery)
		defer spawnTicker.Stop()
		spawn = spawnTicker.C
	}

	n := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case <-ticker.C:
			sb.Tick()
		case <-spawn:
			if n%2 == 0 {
				_, _ = sb.SpawnRandomSphere()
			} else {
				_, _ = sb.SpawnRandomBox()
			}
			n++
			for sb.Registry().Len() > maxObjects {
				for oldest := range sb.Registry().All() {
					sb.Remove(oldest)
					break
				}
			}
		}
	}
}
