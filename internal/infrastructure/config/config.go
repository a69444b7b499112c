package config

import "time"

type Config struct {
	Server struct {
		Port               int    `yaml:"port"`
		ReadTimeoutStr     string `yaml:"read_timeout"`
		WriteTimeoutStr    string `yaml:"write_timeout"`
		ShutdownTimeoutStr string `yaml:"shutdown_timeout"`

		ReadTimeout     time.Duration `yaml:"-"`
		WriteTimeout    time.Duration `yaml:"-"`
		ShutdownTimeout time.Duration `yaml:"-"`
	} `yaml:"server"`

	Gateway struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		ClientID           int    `yaml:"client_id"`
		Exchange           string `yaml:"exchange"`
		Currency           string `yaml:"currency"`
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
		LogoutAfterRun     bool   `yaml:"logout_after_run"`
		CallTimeoutStr     string `yaml:"call_timeout"`

		CallTimeout time.Duration `yaml:"-"`
	} `yaml:"gateway"`

	Store struct {
		Driver          string `yaml:"driver"`
		WriteTimeoutStr string `yaml:"write_timeout"`
		QueryTimeoutStr string `yaml:"query_timeout"`

		WriteTimeout time.Duration `yaml:"-"`
		QueryTimeout time.Duration `yaml:"-"`

		InfluxDB struct {
			URL    string `yaml:"url"`
			Token  string `yaml:"token"`
			Org    string `yaml:"org"`
			Bucket string `yaml:"bucket"`
		} `yaml:"influxdb"`

		PostgreSQL struct {
			DSN                string `yaml:"dsn"`
			MaxOpenConns       int    `yaml:"max_open_conns"`
			MaxIdleConns       int    `yaml:"max_idle_conns"`
			ConnMaxLifetimeStr string `yaml:"conn_max_lifetime"`

			ConnMaxLifetime time.Duration `yaml:"-"`
		} `yaml:"postgresql"`

		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
	} `yaml:"store"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTLStr   string `yaml:"ttl"`

		TTL time.Duration `yaml:"-"`
	} `yaml:"redis"`

	Ingest struct {
		Duration   string `yaml:"duration"`
		BarSize    string `yaml:"bar_size"`
		Cron       string `yaml:"cron"`
		RunOnStart bool   `yaml:"run_on_start"`
		Workers    int    `yaml:"workers"`
		Mode       string `yaml:"mode"`
	} `yaml:"ingest"`

	Symbols []string `yaml:"symbols"`

	Dashboard struct {
		GrafanaURL string `yaml:"grafana_url"`
	} `yaml:"dashboard"`

	Logging struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}
