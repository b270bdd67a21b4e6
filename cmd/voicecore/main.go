// Voice Core - Home Automation Command Interpreter
//
// This is the main entry point for the Voice Core service. Voice Core
// turns free-form voice and text commands into authorised home
// automation actions:
//   - Deterministic rule-based intent classification (no ML at runtime)
//   - Entity resolution with per-room lexicon and safe defaults
//   - Session quotas with idle and lifetime expiry
//   - Single-dispatch controller calls with a full audit trail
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aldersync/voice-core/internal/api"
	"github.com/aldersync/voice-core/internal/audit"
	"github.com/aldersync/voice-core/internal/controller"
	"github.com/aldersync/voice-core/internal/entity"
	"github.com/aldersync/voice-core/internal/infrastructure/config"
	"github.com/aldersync/voice-core/internal/infrastructure/database"
	"github.com/aldersync/voice-core/internal/infrastructure/influxdb"
	"github.com/aldersync/voice-core/internal/infrastructure/logging"
	"github.com/aldersync/voice-core/internal/infrastructure/mqtt"
	"github.com/aldersync/voice-core/internal/intent"
	"github.com/aldersync/voice-core/internal/pipeline"
	"github.com/aldersync/voice-core/internal/session"
	"github.com/aldersync/voice-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
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
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Voice Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open the session and audit store
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

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Load the rule table and lexicon
	table, err := intent.LoadTable(cfg.Pipeline.RulesFile)
	if err != nil {
		return fmt.Errorf("loading rule table: %w", err)
	}
	log.Info("rule table loaded", "path", cfg.Pipeline.RulesFile, "rules", table.Len())

	lexicon, err := entity.LoadLexicon(cfg.Pipeline.LexiconFile)
	if err != nil {
		return fmt.Errorf("loading lexicon: %w", err)
	}
	log.Info("lexicon loaded", "path", cfg.Pipeline.LexiconFile)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			mqttClient.Disconnect()
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil && !errors.Is(err, influxdb.ErrDisabled) {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		if influxClient != nil {
			defer func() {
				log.Info("closing InfluxDB connection")
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	} else {
		log.Info("InfluxDB disabled")
	}

	// WebSocket hub, shared between the API server and the pipeline
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	governor := session.NewGovernor(db, cfg.Session)
	audits := audit.NewSQLiteRepository(db)

	// Assemble the pipeline. The optional fan-out clients are left unset
	// when disabled so the pipeline skips them.
	pipelineDeps := pipeline.Deps{
		Classifier: intent.NewClassifier(table),
		Resolver:   entity.NewResolver(lexicon, cfg.Pipeline.Limits),
		Governor:   governor,
		Dispatcher: controller.NewClient(cfg.Controller),
		Audit:      audits,
		Logger:     log,
		Live:       hub,
	}
	if mqttClient != nil {
		pipelineDeps.Events = mqttClient
	}
	if influxClient != nil {
		pipelineDeps.Metrics = influxClient
	}
	pipe := pipeline.New(pipelineDeps)

	// Start the API server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Pipeline: pipe,
		Audit:    audits,
		DB:       db,
		Hub:      hub,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Sweep expired sessions in the background
	go sweepSessions(ctx, governor, influxClient, cfg.Session, log)

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// sweepSessions periodically deletes expired sessions so the store does
// not accumulate dead rows. Runs until the context is cancelled.
func sweepSessions(ctx context.Context, governor *session.Governor, metrics *influxdb.Client, cfg config.SessionConfig, log *logging.Logger) {
	ticker := time.NewTicker(cfg.SweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := governor.PurgeExpired(ctx)
			if err != nil {
				log.Error("session sweep failed", "error", err)
				continue
			}
			if purged > 0 {
				log.Info("expired sessions purged", "count", purged)
				if metrics != nil {
					metrics.WriteSessionMetric("purged", purged)
				}
			}
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses VOICECORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VOICECORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
