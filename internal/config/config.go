package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// MinSecretLength is the shortest accepted session signing secret, in bytes
const MinSecretLength = 32

const placeholderSecret = "change-me-in-production"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Session and login settings
	Auth AuthConfig `yaml:"auth"`

	// News and comments settings
	News NewsConfig `yaml:"news"`

	// Seed import settings
	Import ImportConfig `yaml:"import"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"10s"`
	// Proxy IPs or CIDRs whose X-Forwarded-For is honoured; empty trusts none
	TrustedProxies []string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES" env-separator:","`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port           string        `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User           string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password       string        `yaml:"password" env:"DB_PASSWORD" env-default:"postgres"`
	Name           string        `yaml:"name" env:"DB_NAME" env-default:"news_notes"`
	SSLMode        string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns   int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns   int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MaxLifetime    time.Duration `yaml:"max_lifetime" env:"DB_MAX_LIFETIME" env-default:"5m"`
	MigrationsPath string        `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// AuthConfig holds session token and login redirect settings
type AuthConfig struct {
	Secret     string        `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
	Issuer     string        `yaml:"issuer" env:"AUTH_ISSUER" env-default:"news-notes-api"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"AUTH_SESSION_TTL" env-default:"336h"`
	CookieName string        `yaml:"cookie_name" env:"AUTH_COOKIE_NAME" env-default:"sessionid"`
	LoginURL   string        `yaml:"login_url" env:"AUTH_LOGIN_URL" env-default:"/auth/login/"`
	// Login attempts allowed per client IP; zero disables throttling
	LoginRatePerMinute int `yaml:"login_rate_per_minute" env:"AUTH_LOGIN_RATE" env-default:"10"`
	LoginBurst         int `yaml:"login_burst" env:"AUTH_LOGIN_BURST" env-default:"5"`
}

// NewsConfig holds home page and comment filter settings
type NewsConfig struct {
	HomePageSize int      `yaml:"home_page_size" env:"NEWS_COUNT_ON_HOME_PAGE" env-default:"10"`
	BadWords     []string `yaml:"bad_words" env:"BAD_WORDS" env-separator:"," env-default:"редиска,негодяй"`
	Warning      string   `yaml:"warning" env:"BAD_WORDS_WARNING" env-default:"Не ругайтесь!"`
}

// ImportConfig holds seed import settings
type ImportConfig struct {
	BatchSize int `yaml:"batch_size" env:"IMPORT_BATCH_SIZE" env-default:"1000"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"` // "json" or "pretty"
}

// Load reads configuration from the YAML file at path (if any) and then from
// environment variables. An empty path falls back to CONFIG_PATH.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("AUTH_SECRET is required")
	}
	if c.Auth.Secret == placeholderSecret {
		return fmt.Errorf("AUTH_SECRET must not be the placeholder value")
	}
	if len(c.Auth.Secret) < MinSecretLength {
		return fmt.Errorf("AUTH_SECRET must be at least %d bytes", MinSecretLength)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("AUTH_SESSION_TTL must be positive")
	}
	if c.News.HomePageSize <= 0 {
		return fmt.Errorf("NEWS_COUNT_ON_HOME_PAGE must be positive")
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
