package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/goal-tracker/internal"
	"github.com/frahmantamala/goal-tracker/internal/sweep"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that keep goal statuses current.`,
}

var sweepWorkerCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Start the goal sweep worker pool",
	Long:  `Periodically evaluate every active goal so due completions and cancellations are stored without a client request.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweepWorker()
	},
}

var (
	maxWorkers    int
	jobQueueSize  int
	sweepInterval time.Duration
	sweepOnce     bool
)

func newSweepPool(cfg internal.WorkerConfig, evaluator sweep.Evaluator, logger *slog.Logger) *sweep.Pool {
	return sweep.NewPool(sweep.Config{
		Interval:   cfg.Interval,
		MaxWorkers: cfg.MaxWorkers,
		QueueSize:  cfg.QueueSize,
	}, evaluator, logger)
}

func startSweepWorker() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	log := deps.Logger

	workerConfig := internal.WorkerConfig{
		Interval:   getDurationFlag(sweepInterval, deps.Config.Worker.Interval),
		MaxWorkers: getIntFlag(maxWorkers, deps.Config.Worker.MaxWorkers),
		QueueSize:  getIntFlag(jobQueueSize, deps.Config.Worker.QueueSize),
	}

	log.Info("starting goal sweep worker",
		"interval", workerConfig.Interval,
		"max_workers", workerConfig.MaxWorkers,
		"queue_size", workerConfig.QueueSize,
		"once", sweepOnce)

	pool := newSweepPool(workerConfig, deps.GoalService, log)
	clock := func() time.Time { return time.Now().UTC() }

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sweepOnce {
		if _, err := pool.RunOnce(ctx, clock()); err != nil {
			log.Error("goal sweep failed", "error", err)
		}
	} else {
		log.Info("sweep worker is running. Press Ctrl+C to stop.")
		pool.Run(ctx, clock)
		log.Info("received signal, shutting down sweep worker")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("sweep worker pool shutdown complete")
	case <-shutdownCtx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}

	deps.Close(shutdownCtx)
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	sweepWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	sweepWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	sweepWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "Time between sweeps (overrides config)")
	sweepWorkerCmd.Flags().BoolVar(&sweepOnce, "once", false, "Run a single sweep and exit")

	workerCmd.AddCommand(sweepWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
