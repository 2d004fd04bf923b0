// @title        Noise Monitor Device API
// @version      1.0
// @description  Ingestion and query API for noise-monitoring sensor readings.
// @BasePath     /
// @securityDefinitions.apikey  DeviceKey
// @in                          header
// @name                        X-API-Key
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "noise_monitor/docs"
	"noise_monitor/internal/config"
	"noise_monitor/internal/handlers"
	"noise_monitor/internal/logger"
	"noise_monitor/internal/metrics"
	"noise_monitor/internal/repository"
	"noise_monitor/internal/repository/db"
	"noise_monitor/internal/server"
	"noise_monitor/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// bootstrap logger until config is known
	log := logger.Get(logger.InfoLevel)

	cfg, err := config.Load(os.Getenv("CONFIG_DIR"))
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log = logger.Init(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	if cfg.Log.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, closeStore, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to init reading store", "err", err, "driver", cfg.Store.Driver)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	services := service.NewService(repos, service.Options{
		GateDefault: cfg.Ingest.EnabledDefault,
		GateTTL:     cfg.Ingest.CacheTTL,
		Log:         log,
		Metrics:     m,
	})
	apiHandler := handlers.NewHandler(services, log.Named("http"), handlers.Config{
		APIKey:   cfg.Device.APIKey,
		Metrics:  m,
		Gatherer: reg,
	})
	if cfg.Device.APIKey == "" {
		log.Warnw("device.api_key not set; device ingestion endpoint is unauthenticated")
	}

	go services.Monitor.Run(ctx, cfg.MonitorTick)

	srv := server.New(server.Options{
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, cfg, log)
}

// openRepository builds the repository for the configured driver and a
// func releasing its resources.
func openRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repository.Repository, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Infow("using in-memory reading store", "history_limit", cfg.HistoryLimit)
		return repository.NewMemoryRepository(cfg.HistoryLimit), noop, nil

	case config.DriverSQLite, config.DriverPostgres:
		conn, err := db.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, noop, err
		}
		dialect := repository.DialectSQLite
		if cfg.Store.Driver == config.DriverPostgres {
			dialect = repository.DialectPostgres
		}
		log.Infow("using sql reading store", "driver", cfg.Store.Driver)
		return repository.NewSQLRepository(conn, dialect, cfg.HistoryLimit), closeDB(conn, log), nil

	case config.DriverDynamo:
		client, err := newDynamoClient(ctx, cfg.Store.Dynamo)
		if err != nil {
			return nil, noop, err
		}
		log.Infow("using dynamodb reading store",
			"readings_table", cfg.Store.Dynamo.ReadingsTable,
			"settings_table", cfg.Store.Dynamo.SettingsTable,
		)
		return repository.NewDynamoRepository(client, cfg.Store.Dynamo.ReadingsTable, cfg.Store.Dynamo.SettingsTable, cfg.HistoryLimit), noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func newDynamoClient(ctx context.Context, c config.DynamoConfig) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		// local DynamoDB or localstack
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	}), nil
}

func closeDB(conn *sql.DB, log *logger.Logger) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Errorw("failed to close database", "err", err)
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, cfg *config.Config, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
