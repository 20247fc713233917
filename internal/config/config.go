package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Session store backends.
const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	SessionStore  string        `mapstructure:"SESSION_STORE"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	MigrationsDir string        `mapstructure:"MIGRATIONS_DIR"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`

	// Storage endpoint that receives submissions.
	StorageEndpointURL string        `mapstructure:"STORAGE_ENDPOINT_URL"`
	StorageTimeout     time.Duration `mapstructure:"STORAGE_TIMEOUT"`

	ReportFontPath string `mapstructure:"REPORT_FONT_PATH"`

	CORSOrigins  []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS int      `mapstructure:"RATE_LIMIT_RPS"`

	BridgeConfig `mapstructure:",squash"`
}

// BridgeConfig configures the reference storage endpoint.
type BridgeConfig struct {
	BridgePort       string        `mapstructure:"BRIDGE_PORT"`
	LedgerPath       string        `mapstructure:"BRIDGE_LEDGER_PATH"`
	PDFDir           string        `mapstructure:"BRIDGE_PDF_DIR"`
	PublicBaseURL    string        `mapstructure:"BRIDGE_PUBLIC_BASE_URL"`
	MinioEndpoint    string        `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey   string        `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey   string        `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket      string        `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL      bool          `mapstructure:"MINIO_USE_SSL"`
	MinioLinkExpires time.Duration `mapstructure:"MINIO_LINK_EXPIRES"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT",
	"SESSION_STORE", "SESSION_TTL", "DATABASE_URL", "MIGRATIONS_DIR",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"STORAGE_ENDPOINT_URL", "STORAGE_TIMEOUT", "REPORT_FONT_PATH",
	"CORS_ORIGINS", "RATE_LIMIT_RPS",
	"BRIDGE_PORT", "BRIDGE_LEDGER_PATH", "BRIDGE_PDF_DIR", "BRIDGE_PUBLIC_BASE_URL",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET",
	"MINIO_USE_SSL", "MINIO_LINK_EXPIRES",
}

// Load reads configuration from the environment, after pulling a .env file
// into it when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STORAGE_TIMEOUT", "60s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("BRIDGE_PORT", "8090")
	v.SetDefault("BRIDGE_LEDGER_PATH", "data/回答データ.xlsx")
	v.SetDefault("BRIDGE_PDF_DIR", "data/pdf")
	v.SetDefault("MINIO_BUCKET", "health-intake")
	v.SetDefault("MINIO_LINK_EXPIRES", "168h")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	case SessionStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SESSION_STORE=%s", SessionStorePostgres)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// MinioEnabled reports whether the bridge should keep PDFs in object storage
// instead of the local directory.
func (c BridgeConfig) MinioEnabled() bool {
	return c.MinioEndpoint != ""
}
