package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rocketmq-go/namesrv/internal/logger"
	"github.com/rocketmq-go/namesrv/internal/rim"
	"github.com/rocketmq-go/namesrv/internal/scavenger"
	"github.com/rocketmq-go/namesrv/internal/telemetry"
	"github.com/rocketmq-go/namesrv/pkg/config"
	"github.com/rocketmq-go/namesrv/pkg/metrics"
	"github.com/rocketmq-go/namesrv/pkg/queryapi"

	// Registers the Prometheus-backed RIMMetrics constructor via init().
	_ "github.com/rocketmq-go/namesrv/pkg/metrics/prometheus"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the namesrv server",
	Long: `Start the namesrv route-information-manager server.

Loads configuration, brings up structured logging, optional OpenTelemetry
tracing and Prometheus metrics, the broker-registration/route-pickup HTTP
API, and the background scavenger, then serves until interrupted.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	if configFile == "" && !config.DefaultConfigExists() {
		return fmt.Errorf("no configuration file found at default location: %s\n\n"+
			"Initialize one first:\n  namesrv init\n\nOr specify a custom config file:\n  namesrv start --config /path/to/config.yaml",
			config.DefaultConfigPath())
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "namesrv",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = metrics.NewServer(metrics.ListenAddr(cfg.Metrics.Port))
		logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("metrics disabled")
	}

	r := rim.New(rim.Config{
		DeleteTopicWithBrokerRegistration: cfg.Namesrv.DeleteTopicWithBrokerRegistration,
		SupportActingMaster:               cfg.Namesrv.SupportActingMaster,
		NotifyMinBrokerIdChanged:          cfg.Namesrv.NotifyMinBrokerIdChanged,
	})

	r.OnMinBrokerIDChanged(func(event rim.MinBrokerIDChangedEvent) {
		logger.Info("min broker id changed",
			"cluster", event.ClusterName, "broker", event.BrokerName, "haServerAddr", event.HaServerAddr)
	})

	sweep := scavenger.New(r, cfg.Scavenger.ScanInterval)
	sweep.Start()
	defer sweep.Stop()

	queryServer := queryapi.NewServer(queryapi.Config{
		ListenAddr:          cfg.Server.ListenAddr,
		ReadTimeout:         cfg.Server.ReadTimeout,
		WriteTimeout:        cfg.Server.WriteTimeout,
		IdleTimeout:         cfg.Server.IdleTimeout,
		MaxRegisterBodySize: cfg.Server.MaxRegisterBodySize,
	}, r)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- queryServer.Start(ctx)
	}()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	logger.Info("namesrv server is running", "listen_addr", cfg.Server.ListenAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()

		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = metricsServer.Shutdown(shutdownCtx)
			cancel()
		}

		if err := <-serverDone; err != nil {
			return fmt.Errorf("query API shutdown error: %w", err)
		}
		logger.Info("namesrv server stopped gracefully")
		return nil

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			return fmt.Errorf("query API server error: %w", err)
		}
		logger.Info("namesrv server stopped")
		return nil
	}
}
