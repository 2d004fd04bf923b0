package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by store.driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDynamo   = "dynamodb"
)

// Config is the resolved runtime configuration of the ingestion server.
type Config struct {
	Port   string
	Server ServerConfig
	Log    LogConfig
	Device DeviceConfig
	Ingest IngestConfig
	Store  StoreConfig

	HistoryLimit int
	MonitorTick  time.Duration
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type DeviceConfig struct {
	// APIKey is the shared device secret; empty disables the check.
	APIKey string
}

type IngestConfig struct {
	EnabledDefault bool
	CacheTTL       time.Duration
}

type StoreConfig struct {
	Driver string
	DSN    string
	Dynamo DynamoConfig
}

type DynamoConfig struct {
	Region        string
	Endpoint      string
	ReadingsTable string
	SettingsTable string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("device.api_key", "")
	v.SetDefault("ingest.enabled_default", true)
	v.SetDefault("ingest.cache_ttl", 10*time.Second)
	v.SetDefault("history.limit", 500)
	v.SetDefault("monitor.tick", 15*time.Second)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.dynamodb.region", "")
	v.SetDefault("store.dynamodb.endpoint", "")
	v.SetDefault("store.dynamodb.readings_table", "device_readings")
	v.SetDefault("store.dynamodb.settings_table", "system_settings")
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"port":                          "PORT",
	"log.level":                     "LOG_LEVEL",
	"log.format":                    "LOG_FORMAT",
	"device.api_key":                "DEVICE_API_KEY",
	"ingest.enabled_default":        "DEVICE_INGEST_ENABLED",
	"store.driver":                  "STORE_DRIVER",
	"store.dsn":                     "STORE_DSN",
	"store.dynamodb.region":         "AWS_REGION",
	"store.dynamodb.endpoint":       "DYNAMODB_ENDPOINT",
	"store.dynamodb.readings_table": "DYNAMODB_READINGS_TABLE",
	"store.dynamodb.settings_table": "DYNAMODB_SETTINGS_TABLE",
}

// Load reads configs/config.yml (or the directory in path), an optional
// .env file and the environment, in increasing order of precedence.
// A missing config file or .env is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = "configs"
	}
	v.AddConfigPath(path)
	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		Port: v.GetString("port"),
		Server: ServerConfig{
			ReadHeaderTimeout: v.GetDuration("server.read_header_timeout"),
			WriteTimeout:      v.GetDuration("server.write_timeout"),
			IdleTimeout:       v.GetDuration("server.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("server.shutdown_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Device: DeviceConfig{APIKey: strings.TrimSpace(v.GetString("device.api_key"))},
		Ingest: IngestConfig{
			EnabledDefault: parseEnabled(v.GetString("ingest.enabled_default")),
			CacheTTL:       v.GetDuration("ingest.cache_ttl"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
			DSN:    v.GetString("store.dsn"),
			Dynamo: DynamoConfig{
				Region:        v.GetString("store.dynamodb.region"),
				Endpoint:      v.GetString("store.dynamodb.endpoint"),
				ReadingsTable: v.GetString("store.dynamodb.readings_table"),
				SettingsTable: v.GetString("store.dynamodb.settings_table"),
			},
		},
		HistoryLimit: v.GetInt("history.limit"),
		MonitorTick:  v.GetDuration("monitor.tick"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseEnabled treats everything except an explicit "false" as enabled.
func parseEnabled(s string) bool {
	return !strings.EqualFold(strings.TrimSpace(s), "false")
}

// Validate checks driver names and that limits and intervals are positive.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverMemory, DriverDynamo:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	if c.Store.Driver == DriverDynamo && (c.Store.Dynamo.ReadingsTable == "" || c.Store.Dynamo.SettingsTable == "") {
		errs = append(errs, errors.New("store.dynamodb tables must be set"))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history.limit must be positive, got %d", c.HistoryLimit))
	}
	if c.Ingest.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("ingest.cache_ttl must be positive, got %s", c.Ingest.CacheTTL))
	}
	if c.MonitorTick <= 0 {
		errs = append(errs, fmt.Errorf("monitor.tick must be positive, got %s", c.MonitorTick))
	}
	return errors.Join(errs...)
}
