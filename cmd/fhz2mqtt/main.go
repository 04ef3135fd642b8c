// fhz2mqtt - FHT radiator valve bridge
//
// This is the main entry point for the fhz2mqtt application. It connects
// an FHZ1000/1300 transceiver to an MQTT broker: every report the FHT80b
// thermostats send appears as a retained MQTT message, and messages on
// fhz/{hauscode}/set/{command} become FHT telegrams on the bus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olira/fhz2mqtt/internal/bridge"
	"github.com/olira/fhz2mqtt/internal/fhz"
	"github.com/olira/fhz2mqtt/internal/infrastructure/config"
	"github.com/olira/fhz2mqtt/internal/infrastructure/logging"
	"github.com/olira/fhz2mqtt/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting fhz2mqtt",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to the FHZ transceiver
	fhzClient, err := fhz.Connect(ctx, fhz.Config{
		Connection:        cfg.FHZ.Connection,
		ConnectTimeout:    time.Duration(cfg.FHZ.ConnectTimeout) * time.Second,
		ReconnectInterval: time.Duration(cfg.FHZ.ReconnectInterval) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connecting to FHZ: %w", err)
	}
	defer func() {
		log.Info("closing FHZ connection")
		if closeErr := fhzClient.Close(); closeErr != nil {
			log.Error("error closing FHZ", "error", closeErr)
		}
	}()
	fhzClient.SetLogger(log.With("component", "fhz"))
	log.Info("FHZ connected", "connection", cfg.FHZ.Connection)

	// Create and start the bridge
	b, err := bridge.New(bridge.Options{
		MQTTClient:     mqttClient,
		Transport:      fhzClient,
		RetainState:    cfg.Bridge.RetainState,
		HealthInterval: time.Duration(cfg.Bridge.HealthInterval) * time.Second,
		Version:        version,
		Logger:         log.With("component", "bridge"),
	})
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer func() {
		log.Info("stopping bridge")
		b.Stop()
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, fhzClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. Bridge
	// 2. FHZ
	// 3. MQTT

	log.Info("fhz2mqtt stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses FHZ2MQTT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("FHZ2MQTT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - fhzClient: FHZ client to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, fhzClient *fhz.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if err := fhzClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("fhz: %w", err)
	}

	return nil
}
