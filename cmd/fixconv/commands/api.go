package commands

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fixconv/internal/api"
	"github.com/wonny/fixconv/internal/api/handlers"
	"github.com/wonny/fixconv/internal/fix"
	"github.com/wonny/fixconv/internal/scheduler"
	"github.com/wonny/fixconv/internal/scheduler/jobs"
	"github.com/wonny/fixconv/pkg/config"
	"github.com/wonny/fixconv/pkg/logger"
	"github.com/wonny/fixconv/pkg/metrics"
	"github.com/wonny/fixconv/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

Endpoints:
  POST /fix                      - Encode an order
  POST /convert-to-fix-deparsed  - Encode an order and explain the result
  POST /explain                  - Explain a message
  GET  /explain?msg=...          - Explain a message as an HTML page
  GET  /fields                   - Field catalog
  GET  /ws/explain               - Explain messages over a websocket
  GET  /health                   - Health check
  GET  /metrics                  - Prometheus metrics

Configuration is read from the environment and an optional .env file.

Example:
  fixconv api
  fixconv api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fixconv API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Metrics
	m := metrics.New()

	// 4. Rate limiter
	limiter, closeLimiter, err := newLimiter(cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// 5. Handlers
	fixHandler := handlers.NewFixHandler(fix.NewEncoder(), m, log, cfg.API.MaxBodyBytes)
	streamHandler := handlers.NewStreamHandler(fixHandler, api.OriginChecker(cfg.API.CORSAllowedOrigins), log)

	// 6. Stats job
	sched := scheduler.New(log)
	statsJob := jobs.NewStatsJob(m, log, cfg.StatsSchedule)
	if cfg.StatsSchedule != "" {
		if err := sched.AddJob(statsJob); err != nil {
			return fmt.Errorf("add stats job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// 7. Router and server
	router := api.NewRouter(api.RouterDeps{
		Config:    cfg,
		Fix:       fixHandler,
		Stream:    streamHandler,
		Metrics:   m,
		Limiter:   limiter,
		Logger:    log,
		Scheduler: sched,
	})
	server := api.New(cfg, log, router)

	// 8. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  POST /fix")
	fmt.Println("  POST /convert-to-fix-deparsed")
	fmt.Println("  POST /explain")
	fmt.Println("  GET  /explain?msg=...")
	fmt.Println("  GET  /fields")
	fmt.Println("  GET  /ws/explain")
	fmt.Println("  GET  /health")
	if cfg.MetricsEnabled {
		fmt.Println("  GET  /metrics")
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Log the final counters once more after the last request
	if cfg.StatsSchedule != "" {
		if _, err := sched.RunNow(statsJob.Name()); err != nil {
			log.WithError(err).Warn("Final stats run failed")
		}
	}

	log.Info("Server stopped")
	return nil
}

// newLimiter picks the shared Redis limiter when Redis is enabled,
// otherwise an in-process one. A zero rate disables limiting.
func newLimiter(cfg *config.Config, log *logger.Logger) (api.Limiter, func(), error) {
	noop := func() {}

	if cfg.API.RateLimitRPS <= 0 {
		log.Info("Rate limiting disabled")
		return nil, noop, nil
	}

	if !cfg.Redis.Enabled {
		log.WithFields(map[string]interface{}{
			"rps":   cfg.API.RateLimitRPS,
			"burst": cfg.API.RateLimitBurst,
		}).Info("Using in-process rate limiter")
		return api.NewLocalLimiter(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst), noop, nil
	}

	client, err := redis.New(cfg)
	if err != nil {
		return nil, noop, fmt.Errorf("connect to redis: %w", err)
	}

	limit, window := redisWindow(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst)
	log.WithFields(map[string]interface{}{
		"limit":  limit,
		"window": window.String(),
	}).Info("Using Redis rate limiter")

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}
	return api.NewRedisLimiter(redis.NewRateLimiter(client, "fixconv"), limit, window), closeFn, nil
}

// redisWindow converts a token bucket (rps, burst) into a sliding window
// that admits the same burst: burst requests per burst/rps seconds.
func redisWindow(rps float64, burst int) (int, time.Duration) {
	if burst < 1 {
		burst = int(math.Ceil(rps))
	}
	window := time.Duration(float64(burst) / rps * float64(time.Second))
	if window < time.Second {
		window = time.Second
		burst = int(math.Ceil(rps))
	}
	return burst, window
}
