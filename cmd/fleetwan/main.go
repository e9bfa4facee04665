// FleetWAN Core - multi-vendor LoRaWAN fleet management.
//
// This is the main entry point for the FleetWAN Core server. It owns the
// canonical fleet model (companies, applications, device profiles, devices),
// reconciles it against remote vendor network servers, and forwards uplink
// data to application endpoints.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/fleetwan-core/migrations"

	"github.com/nerrad567/fleetwan-core/internal/api"
	"github.com/nerrad567/fleetwan-core/internal/audit"
	"github.com/nerrad567/fleetwan-core/internal/auth"
	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/handlers/loraserverv1"
	"github.com/nerrad567/fleetwan-core/internal/handlers/loraserverv2"
	"github.com/nerrad567/fleetwan-core/internal/handlers/ttnv2"
	"github.com/nerrad567/fleetwan-core/internal/infrastructure/config"
	"github.com/nerrad567/fleetwan-core/internal/infrastructure/database"
	"github.com/nerrad567/fleetwan-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/fleetwan-core/internal/infrastructure/logging"
	"github.com/nerrad567/fleetwan-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fleetwan-core/internal/reporting"
	"github.com/nerrad567/fleetwan-core/internal/session"
	"github.com/nerrad567/fleetwan-core/internal/store"
	"github.com/nerrad567/fleetwan-core/internal/sync"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence: each block wires one subsystem
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting FleetWAN Core",
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

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	st := store.New(db.DB)

	// Seed the initial admin account on first boot. The generated password
	// is logged once and never recoverable afterwards.
	if _, seedErr := auth.SeedAdmin(ctx, st, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to MQTT broker (optional: needed only for the MQTT reporting
	// protocol)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Register vendor protocol handlers. The registry resolves a network's
	// (protocol, version) pair to one of these, falling back to the master
	// protocol's handler for unknown versions.
	httpClient := &http.Client{Timeout: time.Duration(cfg.Sync.CallTimeout) * time.Second}
	lsv1 := loraserverv1.New(httpClient)
	lsv1.SetLogger(log)
	lsv2 := loraserverv2.New(httpClient)
	lsv2.SetLogger(log)
	ttn := ttnv2.New(httpClient)
	ttn.SetLogger(log)

	registry := handlers.NewRegistry()
	registry.SetLogger(log)
	registry.Register(loraserverv1.ProtocolName, loraserverv1.ProtocolVersion, lsv1)
	registry.Register(loraserverv2.ProtocolName, loraserverv2.ProtocolVersion, lsv2)
	registry.Register(ttnv2.ProtocolName, ttnv2.ProtocolVersion, ttn)
	log.Info("protocol handlers registered", "protocols", registry.Protocols())

	// Session coordinator: caches vendor sessions, re-logs-in on expiry.
	sessions := session.NewCoordinator(st, registry)
	sessions.SetLogger(log)

	// Sync manager: pull imports and push fan-outs.
	syncOpts := []sync.Option{
		sync.WithLogger(log),
		sync.WithCallTimeout(time.Duration(cfg.Sync.CallTimeout) * time.Second),
		sync.WithConcurrency(cfg.Sync.PullConcurrency),
	}
	if influxClient != nil {
		syncOpts = append(syncOpts, sync.WithMetrics(sync.NewInfluxMetrics(influxClient)))
	}
	syncManager := sync.NewManager(st, sessions, syncOpts...)

	// Uplink dispatcher: routes ingested payloads to each application's
	// reporting protocol.
	dispatcherOpts := []reporting.Option{reporting.WithLogger(log)}
	if influxClient != nil {
		dispatcherOpts = append(dispatcherOpts, reporting.WithMetrics(reporting.NewInfluxMetrics(influxClient)))
	}
	dispatcher := reporting.NewDispatcher(st, dispatcherOpts...)
	dispatcher.Register("post", reporting.NewPostReporter(nil))
	if mqttClient != nil {
		dispatcher.Register("mqtt", reporting.NewMQTTReporter(mqttClient))
	}

	auditRepo := audit.NewSQLiteRepository(db.DB)

	// API server
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		Logger:     log,
		Store:      st,
		Sessions:   sessions,
		Sync:       syncManager,
		Dispatcher: dispatcher,
		Audit:      auditRepo,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. MQTT (if enabled)
	// 3. InfluxDB (if enabled)
	// 4. Database

	log.Info("FleetWAN Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses FLEETWAN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("FLEETWAN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies infrastructure connections are healthy. The MQTT and
// InfluxDB clients may be nil when those subsystems are disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
