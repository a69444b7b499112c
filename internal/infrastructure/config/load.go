package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"barflow/internal/domain/model"
)

// Store drivers.
const (
	DriverInfluxDB = "influxdb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load builds the configuration: defaults, then the YAML file at path (a missing
// file is not an error), then the environment. A .env file in the working
// directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}

	symbols, err := model.NormalizeSymbols(cfg.Symbols)
	if err != nil {
		return nil, fmt.Errorf("symbols: %w", err)
	}
	cfg.Symbols = symbols

	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Port = 8080
	cfg.Server.ReadTimeoutStr = "10s"
	cfg.Server.WriteTimeoutStr = "30s"
	cfg.Server.ShutdownTimeoutStr = "30s"

	cfg.Gateway.Host = "127.0.0.1"
	cfg.Gateway.Port = 5000
	cfg.Gateway.ClientID = 1
	cfg.Gateway.Exchange = "SMART"
	cfg.Gateway.Currency = "USD"
	cfg.Gateway.InsecureSkipVerify = true
	cfg.Gateway.CallTimeoutStr = "30s"

	cfg.Store.Driver = DriverInfluxDB
	cfg.Store.WriteTimeoutStr = "30s"
	cfg.Store.QueryTimeoutStr = "30s"
	cfg.Store.InfluxDB.URL = "http://localhost:8086"
	cfg.Store.InfluxDB.Bucket = "spy_ohlcv_1m"
	cfg.Store.PostgreSQL.MaxOpenConns = 10
	cfg.Store.PostgreSQL.MaxIdleConns = 5
	cfg.Store.PostgreSQL.ConnMaxLifetimeStr = "5m"
	cfg.Store.SQLite.Path = "data/barflow.db"

	cfg.Redis.Host = "localhost"
	cfg.Redis.Port = 6379
	cfg.Redis.TTLStr = "60s"

	cfg.Ingest.Duration = model.DefaultDuration
	cfg.Ingest.BarSize = model.DefaultBarSize
	cfg.Ingest.Workers = 1
	cfg.Ingest.Mode = "live"

	cfg.Symbols = model.Symbols()

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Logging.MaxSizeMB = 100
	cfg.Logging.MaxBackups = 10
	cfg.Logging.MaxAgeDays = 30

	return cfg
}

func (c *Config) parseDurations() error {
	durations := []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeoutStr, &c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeoutStr, &c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeoutStr, &c.Server.ShutdownTimeout},
		{"gateway.call_timeout", c.Gateway.CallTimeoutStr, &c.Gateway.CallTimeout},
		{"store.write_timeout", c.Store.WriteTimeoutStr, &c.Store.WriteTimeout},
		{"store.query_timeout", c.Store.QueryTimeoutStr, &c.Store.QueryTimeout},
		{"store.postgresql.conn_max_lifetime", c.Store.PostgreSQL.ConnMaxLifetimeStr, &c.Store.PostgreSQL.ConnMaxLifetime},
		{"redis.ttl", c.Redis.TTLStr, &c.Redis.TTL},
	}

	for _, d := range durations {
		v, err := time.ParseDuration(d.src)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	// Gateway
	if v := os.Getenv("IBKR_HOST"); v != "" {
		cfg.Gateway.Host = v
	}
	if v := os.Getenv("IBKR_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("IBKR_CLIENT_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.ClientID = id
		}
	}

	// Store
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("INFLUXDB_HOST"); v != "" {
		cfg.Store.InfluxDB.URL = v
	}
	if v := os.Getenv("INFLUXDB_TOKEN"); v != "" {
		cfg.Store.InfluxDB.Token = v
	}
	if v := os.Getenv("INFLUXDB_ORG"); v != "" {
		cfg.Store.InfluxDB.Org = v
	}
	if v := os.Getenv("INFLUXDB_BUCKET"); v != "" {
		cfg.Store.InfluxDB.Bucket = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Store.PostgreSQL.DSN = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLite.Path = v
	}

	// Redis
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = b
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	// Ingestion
	if v := os.Getenv("INGEST_CRON"); v != "" {
		cfg.Ingest.Cron = v
	}
	if v := os.Getenv("INGEST_MODE"); v != "" {
		cfg.Ingest.Mode = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = strings.Split(v, ",")
	}

	// Server
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = errors.Join(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	if c.Gateway.Host == "" {
		errs = errors.Join(errs, fmt.Errorf("gateway.host cannot be empty"))
	}
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		errs = errors.Join(errs, fmt.Errorf("gateway.port out of range: %d", c.Gateway.Port))
	}
	if c.Gateway.ClientID < 0 {
		errs = errors.Join(errs, fmt.Errorf("gateway.client_id cannot be negative"))
	}

	switch c.Store.Driver {
	case DriverInfluxDB:
		if c.Store.InfluxDB.URL == "" {
			errs = errors.Join(errs, fmt.Errorf("store.influxdb.url cannot be empty"))
		}
		if c.Store.InfluxDB.Token == "" {
			errs = errors.Join(errs, fmt.Errorf("store.influxdb.token cannot be empty"))
		}
		if c.Store.InfluxDB.Org == "" {
			errs = errors.Join(errs, fmt.Errorf("store.influxdb.org cannot be empty"))
		}
		if c.Store.InfluxDB.Bucket == "" {
			errs = errors.Join(errs, fmt.Errorf("store.influxdb.bucket cannot be empty"))
		}
	case DriverPostgres:
		if c.Store.PostgreSQL.DSN == "" {
			errs = errors.Join(errs, fmt.Errorf("store.postgresql.dsn cannot be empty"))
		}
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			errs = errors.Join(errs, fmt.Errorf("store.sqlite.path cannot be empty"))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("unsupported store.driver %q (use: influxdb, postgres, sqlite)", c.Store.Driver))
	}

	if c.Ingest.Workers < 1 {
		errs = errors.Join(errs, fmt.Errorf("ingest.workers must be at least 1"))
	}
	if c.Ingest.Duration == "" || c.Ingest.BarSize == "" {
		errs = errors.Join(errs, fmt.Errorf("ingest.duration and ingest.bar_size are required"))
	}
	if _, err := model.ParseDataMode(c.Ingest.Mode); err != nil {
		errs = errors.Join(errs, fmt.Errorf("ingest.mode: %w", err))
	}
	if len(c.Symbols) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no symbols configured"))
	}

	return errs
}

// GatewayURL is the REST root of the Client Portal gateway.
func (c *Config) GatewayURL() string {
	return fmt.Sprintf("https://%s:%d/v1/api", c.Gateway.Host, c.Gateway.Port)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
