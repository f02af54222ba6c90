package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/acrylic/tracker/internal/domain/entities"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Canvas   CanvasConfig   `mapstructure:"canvas"`
	Display  DisplayConfig  `mapstructure:"display"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CanvasConfig holds the LMS connection settings.
// Endpoint is a URL template; "{prefix}" is replaced by each institution prefix.
type CanvasConfig struct {
	Token             string        `mapstructure:"token"`
	Prefixes          []string      `mapstructure:"prefixes"`
	Endpoint          string        `mapstructure:"endpoint"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// DisplayConfig holds presentation preferences shared by every surface
type DisplayConfig struct {
	SortMode         string `mapstructure:"sort_mode"`
	ShowLate         bool   `mapstructure:"show_late"`
	ExactDateHeaders bool   `mapstructure:"exact_date_headers"`
	HideScrollBar    bool   `mapstructure:"hide_scroll_bar"`
	WidgetLimit      int    `mapstructure:"widget_limit"`
	Timezone         string `mapstructure:"timezone"`
}

// StorageConfig selects the key-value backend.
// Driver is one of memory, file, redis or postgres.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	Namespace string `mapstructure:"namespace"`
	Dir       string `mapstructure:"dir"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds JWT configuration for the HTTP API
type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
	Issuer    string        `mapstructure:"issuer"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	SecretKey          string        `mapstructure:"secret_key"`
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const defaultJWTSecret = "change-me-acrylic-jwt-secret"

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	// config.yaml in the working directory is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFile loads configuration from a config file, still honoring env vars.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Canvas.Prefixes = splitPrefixes(cfg.Canvas.Prefixes)

	// Validate configuration
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Acrylic")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")

	// Canvas defaults
	v.SetDefault("canvas.token", "")
	v.SetDefault("canvas.prefixes", []string{})
	v.SetDefault("canvas.endpoint", "https://{prefix}.instructure.com")
	v.SetDefault("canvas.requests_per_second", 0)
	v.SetDefault("canvas.timeout", "0s")

	// Display defaults
	v.SetDefault("display.sort_mode", "date")
	v.SetDefault("display.show_late", false)
	v.SetDefault("display.exact_date_headers", false)
	v.SetDefault("display.hide_scroll_bar", false)
	v.SetDefault("display.widget_limit", 5)
	v.SetDefault("display.timezone", "Local")

	// Storage defaults
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.namespace", "group.acrylic")
	v.SetDefault("storage.dir", ".acrylic")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "acrylic")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "30s")
	v.SetDefault("database.migrations_path", "migrations")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// JWT defaults
	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.expires_in", "720h")
	v.SetDefault("jwt.issuer", "acrylic")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.secret_key", "")
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 20)
	v.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("app.debug", "APP_DEBUG")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")

	// Canvas
	v.BindEnv("canvas.token", "CANVAS_TOKEN")
	v.BindEnv("canvas.prefixes", "CANVAS_PREFIXES")
	v.BindEnv("canvas.endpoint", "CANVAS_ENDPOINT")
	v.BindEnv("canvas.requests_per_second", "CANVAS_REQUESTS_PER_SECOND")
	v.BindEnv("canvas.timeout", "CANVAS_TIMEOUT")

	// Display
	v.BindEnv("display.sort_mode", "SORT_MODE")
	v.BindEnv("display.show_late", "SHOW_LATE")
	v.BindEnv("display.exact_date_headers", "EXACT_DATE_HEADERS")
	v.BindEnv("display.hide_scroll_bar", "HIDE_SCROLL_BAR")
	v.BindEnv("display.widget_limit", "WIDGET_LIMIT")
	v.BindEnv("display.timezone", "DISPLAY_TIMEZONE")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.namespace", "STORAGE_NAMESPACE")
	v.BindEnv("storage.dir", "STORAGE_DIR")

	// Database
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.ssl_mode", "DB_SSL_MODE")
	v.BindEnv("database.migrations_path", "DB_MIGRATIONS_PATH")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expires_in", "JWT_EXPIRES_IN")
	v.BindEnv("jwt.issuer", "JWT_ISSUER")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Security
	v.BindEnv("security.secret_key", "SECRET_KEY")
	v.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	v.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

// splitPrefixes accepts both list values and a single comma separated env string.
func splitPrefixes(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, p := range strings.Split(item, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func validateConfig(cfg *Config) error {
	switch cfg.Storage.Driver {
	case "memory", "file", "redis", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	mode, err := entities.ParseSortMode(cfg.Display.SortMode)
	if err != nil {
		return fmt.Errorf("sort mode must be date or course: %w", err)
	}
	cfg.Display.SortMode = string(mode)

	if !strings.Contains(cfg.Canvas.Endpoint, "{prefix}") {
		return fmt.Errorf("canvas endpoint must contain {prefix}")
	}

	for _, prefix := range cfg.Canvas.Prefixes {
		if !entities.ValidPrefix(prefix) {
			return fmt.Errorf("canvas prefix %q must be a DNS label of letters, digits and '-'", prefix)
		}
	}

	if cfg.Canvas.RequestsPerSecond < 0 {
		return fmt.Errorf("canvas requests per second cannot be negative")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if !cfg.App.IsDevelopment() && cfg.JWT.UsesDefaultJWTSecret() {
		return fmt.Errorf("jwt secret must be set outside development (environment %q)", cfg.App.Environment)
	}

	return nil
}

// Location resolves the display timezone.
func (cfg *DisplayConfig) Location() (*time.Location, error) {
	if cfg.Timezone == "" || cfg.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(cfg.Timezone)
}

// UsesDefaultJWTSecret reports whether the API would run with the built-in secret.
func (cfg *JWTConfig) UsesDefaultJWTSecret() bool {
	return cfg.Secret == "" || cfg.Secret == defaultJWTSecret
}

// GetDSN returns the database connection string
func (cfg *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// GetAddr returns the Redis address
func (cfg *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}
