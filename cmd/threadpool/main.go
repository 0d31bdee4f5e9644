// Package main implements threadpool, a driver that pushes a configurable
// load of jobs through a worker pool and reports what happened.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/aeldidi/threadpool/config"
	"github.com/aeldidi/threadpool/errors"
	"github.com/aeldidi/threadpool/health"
	"github.com/aeldidi/threadpool/metric"
	"github.com/aeldidi/threadpool/pkg/worker"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "threadpool"

	metricsPrefix = "threadpool_driver"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(3)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		code := exitCode(err)
		slog.Error("Application failed",
			"error", err,
			"class", errors.Classify(err).String(),
			"exit_code", code)
		stop()
		os.Exit(code)
	}
}

// exitCode is 2 for bad flags or configuration, as the flag package uses for
// usage errors, and 1 for everything else.
func exitCode(err error) int {
	if errors.IsInvalid(err) {
		return 2
	}
	return 1
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cliCfg, err := parseFlags(args, stdout)
	if err != nil {
		return errors.WrapInvalid(err, "threadpool", "run", "parse flags")
	}
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		return nil
	}

	cfg, err := loadConfig(cliCfg)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format, stdout)
	slog.SetDefault(logger)

	logger.Info("Starting threadpool",
		"threads", cfg.Pool.ThreadCount,
		"jobs", cliCfg.Jobs,
		"producers", cliCfg.Producers,
		"rate", cliCfg.Rate)

	registry := metric.NewMetricsRegistry()
	monitor := health.NewMonitor()

	pool, err := worker.New(cfg.Pool.ThreadCount,
		worker.WithLogger(logger),
		worker.WithMetricsRegistry(registry, metricsPrefix),
		worker.WithFaultHandler(func(f *worker.JobFault) {
			logger.Debug("Fault delivered", "job", f.JobSeq, "worker", f.Worker)
		}),
	)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	monitor.Register("pool", pool.Health)
	defer monitor.Remove("pool")

	if cfg.Metrics.Enabled {
		server := startMetricsServer(cfg.Metrics, registry, monitor, logger)
		defer func() {
			if err := server.Stop(); err != nil {
				logger.Warn("Metrics server stop failed", "error", err)
			}
		}()
	}

	start := time.Now()
	err = produce(ctx, pool, cliCfg)
	if err == nil {
		err = waitIdle(ctx, pool)
	}
	if err != nil {
		logger.Warn("Run interrupted, discarding pending jobs",
			"error", err,
			"queued", pool.Stats().QueueLength)
		pool.Reset()
	}
	elapsed := time.Since(start)

	stats := pool.Stats()
	logger.Info("Run complete",
		"duration", elapsed,
		"submitted", stats.Submitted,
		"executed", stats.Executed,
		"faulted", stats.Faulted,
		"discarded", stats.Discarded,
		"jobs_per_second", throughput(stats.Executed, elapsed),
		"health", monitor.AggregateHealth(appName).Status)

	return nil
}

// loadConfig layers the CLI flags on top of the configuration file and
// THREADPOOL_* environment.
func loadConfig(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	if cliCfg.ConfigPath != "" {
		loader.AddLayer(cliCfg.ConfigPath)
	}
	loader.EnableValidation(false)

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Threads >= 0 {
		cfg.Pool.ThreadCount = cliCfg.Threads
	}
	if cliCfg.LogLevel != "" {
		cfg.Log.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Log.Format = cliCfg.LogFormat
	}
	if cliCfg.MetricsPort == 0 {
		cfg.Metrics.Enabled = false
	} else if cliCfg.MetricsPort > 0 {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Port = cliCfg.MetricsPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// produce splits the job count across producers and submits until done or
// ctx is cancelled. A positive rate is shared by every producer.
func produce(ctx context.Context, pool *worker.Pool, cliCfg *CLIConfig) error {
	var limiter *rate.Limiter
	if cliCfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cliCfg.Rate), cliCfg.Producers)
	}

	g, ctx := errgroup.WithContext(ctx)
	next := 1
	for p := 0; p < cliCfg.Producers; p++ {
		share := cliCfg.Jobs / cliCfg.Producers
		if p < cliCfg.Jobs%cliCfg.Producers {
			share++
		}
		first := next
		next += share

		g.Go(func() error {
			for i := 0; i < share; i++ {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return err
					}
				} else if err := ctx.Err(); err != nil {
					return err
				}
				pool.Submit(makeJob(first+i, cliCfg.Work, cliCfg.FailEvery))
			}
			return nil
		})
	}

	return g.Wait()
}

// waitIdle waits for the pool to go quiescent or for ctx to end. The Wait
// goroutine returns once the caller resets or closes the pool.
func waitIdle(ctx context.Context, pool *worker.Pool) error {
	idle := make(chan struct{})
	go func() {
		pool.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func makeJob(n int, work time.Duration, failEvery int) func() {
	return func() {
		if work > 0 {
			time.Sleep(work)
		}
		if failEvery > 0 && n%failEvery == 0 {
			panic(fmt.Sprintf("synthetic failure on job %d", n))
		}
	}
}

func startMetricsServer(
	cfg config.MetricsConfig,
	registry *metric.MetricsRegistry,
	monitor *health.Monitor,
	logger *slog.Logger,
) *metric.Server {
	server := metric.NewServer(cfg.Port, cfg.Path, registry, monitor)
	go func() {
		logger.Info("Serving metrics", "address", server.Address())
		if err := server.Start(); err != nil {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}

func throughput(executed int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(executed) / elapsed.Seconds()
}
