package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string `env:"NODE_ENV"   env-default:"development"`
	Port      string `env:"PORT"       env-default:"3001"`
	JWTSecret string `env:"JWT_SECRET" env-required:"true"`

	Database DatabaseConfig
	Remote   RemoteConfig
	Cache    CacheConfig
	Evidence EvidenceConfig
	AI       AIConfig
	Log      LogConfig
}

// DatabaseConfig holds database configuration. URL, when set, takes
// precedence over the individual PG_* fields.
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"PG_HOST"     env-default:"localhost"`
	Port     string `env:"PG_PORT"     env-default:"5432"`
	Username string `env:"PG_USERNAME" env-default:"postgres"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE" env-default:"huissierpro"`
	Alter    bool   `env:"DB_ALTER"    env-default:"false"`
}

// RemoteConfig controls the cloud copy of the records.
type RemoteConfig struct {
	Enabled bool          `env:"REMOTE_ENABLED" env-default:"true"`
	Timeout time.Duration `env:"REMOTE_TIMEOUT" env-default:"5s"`
}

// CacheConfig locates the on-device copy.
type CacheConfig struct {
	Dir string `env:"CACHE_DIR" env-default:"./data/cache"`
}

// EvidenceConfig bounds attached media.
type EvidenceConfig struct {
	MaxBytes int `env:"EVIDENCE_MAX_BYTES" env-default:"5242880"`
}

// AIConfig selects the text generator. Without an API key the offline
// template generator is used.
type AIConfig struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
	City         string `env:"ACT_CITY"     env-default:"Brazzaville"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// Load loads configuration from environment variables, reading a .env file first if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive, got %s", c.Remote.Timeout)
	}
	if c.Evidence.MaxBytes <= 0 {
		return fmt.Errorf("EVIDENCE_MAX_BYTES must be positive, got %d", c.Evidence.MaxBytes)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// IsProduction reports whether NODE_ENV is production.
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// Embedded reports whether the database should run as an embedded process:
// no URL, localhost and no password.
func (d DatabaseConfig) Embedded() bool {
	return d.URL == "" && d.Host == "localhost" && d.Password == ""
}
