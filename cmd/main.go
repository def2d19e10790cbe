package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/tejusbharadwaj/outagewatch/internal/api"
	"github.com/tejusbharadwaj/outagewatch/internal/config"
	server "github.com/tejusbharadwaj/outagewatch/internal/grpc"
	"github.com/tejusbharadwaj/outagewatch/internal/metrics"
	"github.com/tejusbharadwaj/outagewatch/internal/monitor"
	"github.com/tejusbharadwaj/outagewatch/internal/notifier"
	"github.com/tejusbharadwaj/outagewatch/internal/scheduler"
	"github.com/tejusbharadwaj/outagewatch/internal/state"
	"github.com/tejusbharadwaj/outagewatch/internal/status"
)

// Command outagewatch watches a utility's public outage feed and sends a
// Telegram message when power at one location goes out or comes back.
//
// Usage:
//
//	outagewatch [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml"; empty for defaults and env only)
//	-env-file string
//	      dotenv file loaded before the config (default ".env")
func main() {
	// Parse command line flags
	flags := parseFlags()

	// A missing .env file is fine
	_ = godotenv.Load(flags.EnvFile)

	// Load configuration
	appConfig, err := config.Load(flags.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger := newLogger(appConfig.Logging)

	area, err := appConfig.Area()
	if err != nil {
		logger.Fatalf("Invalid monitored area: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"longitude":     area.Center.Longitude,
		"latitude":      area.Center.Latitude,
		"radius":        area.Radius,
		"poll_interval": appConfig.Monitor.PollInterval.String(),
	}).Info("Starting outage monitor")
	logger.Debugf("Effective configuration:\n%s", appConfig.Redacted())

	// Create a context that will be canceled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize components
	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatalf("Failed to register metrics: %v", err)
	}

	sink, err := createNotifier(appConfig.Telegram, logger)
	if err != nil {
		logger.Fatalf("Failed to create notifier: %v", err)
	}

	appState := state.NewApplicationState()
	health := server.NewHealthChecker()
	feed := api.NewFeedClient(appConfig.Feed)

	outageMonitor := monitor.NewMonitor(area, feed, sink, appState, collector, logger,
		monitor.WithHealthReporter(health))

	pollScheduler := scheduler.NewScheduler(ctx, outageMonitor, scheduler.Config{
		Interval:     appConfig.Monitor.PollInterval,
		CycleTimeout: appConfig.Monitor.CycleTimeout,
		RunOnStart:   appConfig.Monitor.RunOnStart,
	}, logger)

	// Start background services
	errChan := make(chan error, 2)

	var httpSrv *http.Server
	if appConfig.Server.HTTPPort > 0 {
		gin.SetMode(gin.ReleaseMode)
		httpSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", appConfig.Server.HTTPPort),
			Handler:           status.NewRouter(status.NewHandler(appState, area), prometheus.DefaultGatherer),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.WithField("port", appConfig.Server.HTTPPort).Info("Starting HTTP status server")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("http server error: %w", err)
			}
		}()
	}

	var grpcSrv *grpc.Server
	if appConfig.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", appConfig.Server.GRPCPort))
		if err != nil {
			logger.Fatalf("Failed to listen: %v", err)
		}
		grpcSrv = server.SetupServer(health, logger)
		go func() {
			logger.WithField("port", appConfig.Server.GRPCPort).Info("Starting gRPC health server")
			if err := grpcSrv.Serve(lis); err != nil {
				errChan <- fmt.Errorf("grpc server error: %w", err)
			}
		}()
	}

	if err := pollScheduler.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	// Wait for a signal or a server failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Printf("Received signal %v, initiating shutdown", sig)
	case err := <-errChan:
		logger.WithError(err).Error("Service error, initiating shutdown")
	}

	shutdown(logger, pollScheduler, health, httpSrv, grpcSrv)
	cancel()
}

type Flags struct {
	ConfigPath string
	EnvFile    string
}

func parseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigPath, "config", "config.yaml", "Path to the YAML config file")
	flag.StringVar(&f.EnvFile, "env-file", ".env", "Dotenv file loaded before the config")

	flag.Parse()

	return f
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	switch strings.ToLower(cfg.Format) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// createNotifier returns the Telegram notifier, or a log-only notifier when
// no bot token is configured.
func createNotifier(cfg config.TelegramConfig, logger *logrus.Logger) (monitor.Notifier, error) {
	if !cfg.Enabled() {
		logger.Warn("Telegram bot token not set, notifications will only be logged")
		return notifier.NewLogNotifier(logger), nil
	}

	// Only a rejected token or chat id fails here; an unreachable Telegram is
	// retried on the first notification.
	tg, err := notifier.NewTelegramNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	if err != nil {
		return nil, err
	}
	return tg, nil
}

// Handle graceful shutdown
func shutdown(
	logger *logrus.Logger,
	pollScheduler *scheduler.Scheduler,
	health *server.HealthChecker,
	httpSrv *http.Server,
	grpcSrv *grpc.Server,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Println("Stopping poll scheduler...")
	pollScheduler.Stop(ctx)

	health.Shutdown()

	if httpSrv != nil {
		if err := httpSrv.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("HTTP server shutdown failed")
		}
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}

	logger.Println("Shutdown complete")
}
