package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Insights  InsightsConfig  `mapstructure:"insights"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TLS       bool   `mapstructure:"tls"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool               `mapstructure:"enabled"`
	URL        string             `mapstructure:"url"`
	StreamName string             `mapstructure:"stream_name"`
	Subjects   NATSSubjectsConfig `mapstructure:"subjects"`
}

type NATSSubjectsConfig struct {
	SnapshotIngested string `mapstructure:"snapshot_ingested"`
	HighRiskDetected string `mapstructure:"high_risk_detected"`
}

// AuthConfig holds API authentication settings. An empty key disables
// authentication, which is only intended for local development.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// InsightsConfig tunes the app insight pipeline: how many apps count as
// "recent", which package is the host app, and ingest limits.
type InsightsConfig struct {
	RecentAppsLimit    int           `mapstructure:"recent_apps_limit"`
	HostPackage        string        `mapstructure:"host_package"`
	ExcludedSystemApps []string      `mapstructure:"excluded_system_apps"`
	SnapshotTTL        time.Duration `mapstructure:"snapshot_ttl"`
	MaxBatchSize       int           `mapstructure:"max_batch_size"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/monitormate")
	}

	// Environment variables
	v.SetEnvPrefix("MONITORMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.tls", "MONITORMATE_REDIS_TLS")
	v.BindEnv("redis.host", "MONITORMATE_REDIS_HOST")
	v.BindEnv("redis.port", "MONITORMATE_REDIS_PORT")
	v.BindEnv("redis.password", "MONITORMATE_REDIS_PASSWORD")
	v.BindEnv("database.host", "MONITORMATE_DATABASE_HOST")
	v.BindEnv("database.port", "MONITORMATE_DATABASE_PORT")
	v.BindEnv("database.user", "MONITORMATE_DATABASE_USER")
	v.BindEnv("database.password", "MONITORMATE_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "MONITORMATE_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "MONITORMATE_DATABASE_SSLMODE")
	v.BindEnv("nats.enabled", "MONITORMATE_NATS_ENABLED")
	v.BindEnv("auth.api_key", "MONITORMATE_AUTH_API_KEY")
	v.BindEnv("app.environment", "MONITORMATE_APP_ENVIRONMENT")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyInsightDefaults()

	return &cfg, nil
}

func (c *Config) applyInsightDefaults() {
	if c.Insights.RecentAppsLimit <= 0 {
		c.Insights.RecentAppsLimit = 5
	}
	if c.Insights.MaxBatchSize <= 0 {
		c.Insights.MaxBatchSize = 500
	}
	if c.Insights.SnapshotTTL <= 0 {
		c.Insights.SnapshotTTL = 24 * time.Hour
	}
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}
