// cmd/hoverslam/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/opd-ai/go-hoverslam/pkg/config"
	"github.com/opd-ai/go-hoverslam/pkg/flightlog"
	"github.com/opd-ai/go-hoverslam/pkg/health"
	"github.com/opd-ai/go-hoverslam/pkg/logging"
	"github.com/opd-ai/go-hoverslam/pkg/render"
	engorender "github.com/opd-ai/go-hoverslam/pkg/render/engo"
	"github.com/opd-ai/go-hoverslam/pkg/sim"
)

type options struct {
	configPath    string
	createDefault bool
	mode          string
	renderer      string
	record        string
	attempts      int
	seed          int64
	healthAddr    string
	scale         float64
	fullscreen    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to JSON configuration file")
	flag.BoolVar(&opts.createDefault, "default", false, "Write the default configuration to -config and exit")
	flag.StringVar(&opts.mode, "mode", "auto", "Pilot: 'auto' or 'manual'")
	flag.StringVar(&opts.renderer, "renderer", "none", "Renderer type: 'none', 'terminal' or 'engo'")
	flag.StringVar(&opts.record, "record", "", "SQLite flight log path (overrides config)")
	flag.IntVar(&opts.attempts, "attempts", 0, "Number of headless attempts (overrides config)")
	flag.Int64Var(&opts.seed, "seed", 0, "Random seed for launch velocities (overrides config)")
	flag.StringVar(&opts.healthAddr, "health", "", "Serve /health and /ready on this address, e.g. :8080")
	flag.Float64Var(&opts.scale, "scale", 10, "World units per character cell (terminal only)")
	flag.BoolVar(&opts.fullscreen, "fullscreen", false, "Run in fullscreen mode (engo only)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		logging.NewLogger().Error(ctx, "hoverslam failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.createDefault {
		if opts.configPath == "" {
			return errors.New("-default needs -config")
		}
		return config.Save(config.Default(), opts.configPath)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.record != "" {
		cfg.Record.Path = opts.record
	}
	if opts.attempts > 0 {
		cfg.Simulation.Attempts = opts.attempts
	}
	if opts.seed != 0 {
		cfg.Simulation.Seed = opts.seed
	}

	logger := logging.NewLoggerWithOptions(os.Stderr, cfg.Log.Level)

	mode, err := sim.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	sessionOpts := []sim.Option{sim.WithLogger(logger)}

	var store *flightlog.Store
	if cfg.Record.Path != "" {
		store, err = flightlog.Open(cfg.Record.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		sessionOpts = append(sessionOpts, sim.WithStore(store))
	}

	session, err := sim.New(cfg, sessionOpts...)
	if err != nil {
		return err
	}

	var completed atomic.Int64
	if opts.healthAddr != "" {
		shutdown := serveHealth(ctx, logger, opts.healthAddr, store, &completed)
		defer shutdown()
	}

	switch opts.renderer {
	case "engo":
		// engo owns the main loop and closes the session on exit
		engorender.Run(session, mode, logger, engorender.Options{
			Fullscreen: opts.fullscreen,
			VSync:      true,
		})
		return nil
	case "terminal":
		defer session.Close()
		return runTerminal(ctx, session, store, mode, opts.scale, &completed)
	case "none", "":
		defer session.Close()
		return runHeadless(ctx, session, store, mode, &completed)
	default:
		session.Close()
		return fmt.Errorf("unknown renderer %q", opts.renderer)
	}
}

func runHeadless(ctx context.Context, session *sim.Session, store *flightlog.Store, mode sim.Mode, completed *atomic.Int64) error {
	cfg := session.Config()

	for i := 0; i < cfg.Simulation.Attempts; i++ {
		if err := session.Start(ctx, mode); err != nil {
			return err
		}

		sum, err := session.Run(ctx, cfg.Simulation.TimeStep, cfg.Simulation.MaxDuration)
		switch {
		case errors.Is(err, sim.ErrTimeout):
			fmt.Printf("attempt %d: timed out after %.1fs\n", session.Attempts(), cfg.Simulation.MaxDuration)
		case err != nil:
			return err
		default:
			printSummary(session.Attempts(), sum)
		}
		completed.Add(1)
	}

	return printStats(ctx, cfg.Record.Path, store)
}

func runTerminal(ctx context.Context, session *sim.Session, store *flightlog.Store, mode sim.Mode, scale float64, completed *atomic.Int64) error {
	cfg := session.Config()
	cols := int(cfg.World.WindowWidth / scale)
	rows := int(cfg.World.WindowHeight / scale)
	r := render.NewTerminalRenderer(os.Stdout, cols, rows, scale)

	step := cfg.Simulation.TimeStep
	ticker := time.NewTicker(time.Duration(step * float64(time.Second)))
	defer ticker.Stop()

	for i := 0; i < cfg.Simulation.Attempts; i++ {
		if err := session.Start(ctx, mode); err != nil {
			return err
		}

		for !session.Finished() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			if cfg.Simulation.MaxDuration > 0 && session.FlightTime() >= cfg.Simulation.MaxDuration {
				break
			}
			session.Tick(step)
			render.DrawFrame(r, session.World().Snapshot(), cfg.World.WindowWidth, session.Telemetry())
		}

		if sum, ok := session.Summary(); ok {
			printSummary(session.Attempts(), sum)
		} else {
			fmt.Printf("attempt %d: timed out after %.1fs\n", session.Attempts(), cfg.Simulation.MaxDuration)
		}
		completed.Add(1)
	}

	return printStats(ctx, cfg.Record.Path, store)
}

func printSummary(n int, sum sim.Summary) {
	result := "CRASHED"
	switch {
	case sum.Aborted:
		result = "ABORTED"
	case sum.Outcome.Success:
		result = "LANDED"
	}
	fmt.Printf("attempt %d [%s] %s: velocity %.2f, angle %+.1f°, fuel used %.0f%%, flight %.2fs, drift %+.1f\n",
		n, sum.Mode, result,
		sum.Outcome.Velocity,
		sum.Outcome.AngleDeviation,
		sum.FuelConsumedFraction*100,
		sum.FlightTime,
		sum.LateralSpeed)
}

func printStats(ctx context.Context, path string, store *flightlog.Store) error {
	if store == nil {
		return nil
	}
	st, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("flight log %s: %d attempts, %d landed", path, st.Attempts, st.Successes)
	if st.HasBest {
		fmt.Printf(", softest touchdown %.2f", st.BestVelocity)
	}
	fmt.Println()
	return nil
}

func serveHealth(ctx context.Context, logger *logging.Logger, addr string, store *flightlog.Store, completed *atomic.Int64) func() {
	checker := health.NewChecker()
	if store != nil {
		checker.AddCheck(health.NewStoreCheck(store))
	}
	checker.AddCheck(health.NewProgressCheck(func() int { return int(completed.Load()) }, time.Minute))
	checker.AddCheck(health.NewMemoryCheck(500, nil))

	srv := &http.Server{
		Addr:         addr,
		Handler:      checker.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting health check server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Health check server shutdown failed", err)
		}
	}
}
