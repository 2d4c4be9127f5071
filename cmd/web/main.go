package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hivescope/witnessboard/hive"
	"github.com/hivescope/witnessboard/pkg/beacon"
	"github.com/hivescope/witnessboard/pkg/hiverpc"
	"github.com/hivescope/witnessboard/pkg/logger"
	"github.com/hivescope/witnessboard/pkg/metrics"
	"github.com/hivescope/witnessboard/web/config"
	"github.com/hivescope/witnessboard/web/handler"
)

var (
	version = "dev"
	date    = "unknown"
)

func main() {
	// Load configuration
	cfg := config.New()

	// Initialize logger and set as default
	log := logger.NewFromConfig(logger.Config{
		LogLevel:         cfg.LogLevel,
		LogHumanFriendly: cfg.LogHumanFriendly,
	})
	slog.SetDefault(log)

	// Prepare context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.InfoContext(ctx, "Witnessboard Web API Service starting",
		slog.String("version", version),
		slog.String("date", date),
	)

	// Resolve the best chain endpoint through the beacon; the default
	// endpoint stays the per-call transport fallback.
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	beaconClient := beacon.NewClientWithHTTP(httpClient, cfg.BeaconURL)
	gateway := hive.NewGatewaySelector(beaconClient, hive.WithDefaultEndpoint(cfg.DefaultEndpoint))

	endpoint := gateway.BestEndpoint(ctx)
	log.InfoContext(ctx, "Chain endpoint resolved", slog.String("endpoint", endpoint))

	rpcClient := hiverpc.NewClientWithHTTP(httpClient, endpoint, cfg.DefaultEndpoint)

	// Domain services
	converter := hive.NewConverter(rpcClient)
	catalog := hive.NewCatalogService(rpcClient, converter)
	accounts := hive.NewAccountService(rpcClient, converter)

	// Discovery diagnostics flow through an event channel; a slow consumer
	// never blocks a discovery run.
	events := make(chan hive.Event, 64)
	discovery := hive.NewDiscoveryEngine(rpcClient, converter,
		hive.WithBatchSize(cfg.BatchSize),
		hive.WithBatchDelay(cfg.BatchDelay),
		hive.WithEvents(events),
	)
	composer := hive.NewComposer(accounts, discovery)

	subCloser := setupEventLogging(ctx, events, logger.WithComponent(log, "discovery"))
	defer subCloser()
	defer close(events)

	// Create HTTP server
	mux := http.NewServeMux()

	handler.NewGetWitnesses(catalog).AddRoutes(mux)
	handler.NewGetAccount(accounts).AddRoutes(mux)
	handler.NewGetGovernance(discovery, composer).AddRoutes(mux)
	handler.NewGetNodes(gateway).AddRoutes(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	// Wrap with logging middleware
	loggedMux := logger.NewMiddleware(log)(mux)

	addr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)

	server := &http.Server{
		Addr:    addr,
		Handler: loggedMux,
	}

	// Start server in a goroutine
	go func() {
		log.InfoContext(ctx, "Server started", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorContext(ctx, "Server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.InfoContext(ctx, "Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	log.InfoContext(ctx, "Server exited gracefully")
}

// setupEventLogging configures discovery event handlers using slog directly
func setupEventLogging(ctx context.Context, events <-chan hive.Event, log *slog.Logger) func() {
	return hive.NewSubscriber(events,
		hive.OnDiscoveryStarted(func(event hive.DiscoveryStarted) {
			log.InfoContext(ctx, "Discovery started",
				slog.String("kind", event.Kind),
				slog.String("target", event.Target),
			)
		}),
		hive.OnPassCompleted(func(event hive.PassCompleted) {
			log.InfoContext(ctx, "Discovery pass completed",
				slog.String("pass", event.Pass),
				slog.Int("candidates", event.Candidates),
				slog.Int("matches", event.Matches),
			)
		}),
		hive.OnPassFailed(func(event hive.PassFailed) {
			log.WarnContext(ctx, "Discovery pass failed",
				slog.String("pass", event.Pass),
				slog.Any("error", event.Err),
			)
		}),
		hive.OnDiscoveryDone(func(event hive.DiscoveryDone) {
			log.InfoContext(ctx, "Discovery completed",
				slog.String("kind", event.Kind),
				slog.String("target", event.Target),
				slog.Int("records", event.Records),
				slog.Int("failedPasses", event.FailedPasses),
				slog.Duration("duration", event.Duration),
			)
		}),
	)
}
