package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Log       LogConfig
	Storage   StorageConfig
	Twilio    TwilioConfig
	AMQP      AMQPConfig
	Scheduler SchedulerConfig
	Share     ShareConfig
	Admin     AdminConfig
	CORS      CORSConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// TTL returns the token lifetime
func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

type LogConfig struct {
	Level       string
	Development bool
}

// StorageConfig selects the object storage backend.
// Driver "local" writes under LocalDir, "s3" talks to an S3-compatible endpoint.
type StorageConfig struct {
	Driver    string
	LocalDir  string
	PublicURL string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

// Enabled reports whether credentials are present
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != ""
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type SchedulerConfig struct {
	OverdueSweepSchedule string
}

type ShareConfig struct {
	TTL time.Duration
}

type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from the environment (and a .env file if present)
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// a missing .env is fine, env vars may be set
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath loads configuration from a specific env file
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := bindConfig(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "djagency-backend")
	v.SetDefault("APP_ENVIRONMENT", "development")

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "0s") // realtime streams stay open

	v.SetDefault("DB_URL", "host=localhost user=postgres password=postgres dbname=djagency port=5432 sslmode=disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 50)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 10)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_HOURS", 24)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_LOCAL_DIR", "./data/storage")
	v.SetDefault("STORAGE_PUBLIC_URL", "http://localhost:8080/files")
	v.SetDefault("STORAGE_BUCKET", "djagency")
	v.SetDefault("STORAGE_USE_SSL", true)

	v.SetDefault("AMQP_EXCHANGE", "backoffice.changes")
	v.SetDefault("OVERDUE_SWEEP_SCHEDULE", "0 6 * * *")
	v.SetDefault("SHARE_LINK_TTL", "720h")

	v.SetDefault("ADMIN_NAME", "Administrador")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
}

func bindConfig(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")

	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")

	cfg.Database.URL = v.GetString("DB_URL")
	cfg.Database.MaxOpenConns = v.GetInt("DATABASE_MAX_OPEN_CONNS")
	cfg.Database.MaxIdleConns = v.GetInt("DATABASE_MAX_IDLE_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DATABASE_CONN_MAX_LIFETIME")

	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.ExpiryHours = v.GetInt("JWT_EXPIRY_HOURS")

	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Development = v.GetBool("LOG_DEVELOPMENT")

	cfg.Storage.Driver = v.GetString("STORAGE_DRIVER")
	cfg.Storage.LocalDir = v.GetString("STORAGE_LOCAL_DIR")
	cfg.Storage.PublicURL = strings.TrimRight(v.GetString("STORAGE_PUBLIC_URL"), "/")
	cfg.Storage.Endpoint = v.GetString("STORAGE_ENDPOINT")
	cfg.Storage.AccessKey = v.GetString("STORAGE_ACCESS_KEY")
	cfg.Storage.SecretKey = v.GetString("STORAGE_SECRET_KEY")
	cfg.Storage.Bucket = v.GetString("STORAGE_BUCKET")
	cfg.Storage.UseSSL = v.GetBool("STORAGE_USE_SSL")

	cfg.Twilio.AccountSID = v.GetString("TWILIO_ACCOUNT_SID")
	cfg.Twilio.AuthToken = v.GetString("TWILIO_AUTH_TOKEN")
	cfg.Twilio.PhoneNumber = v.GetString("TWILIO_PHONE_NUMBER")
	cfg.Twilio.WhatsAppNumber = v.GetString("TWILIO_WHATSAPP_NUMBER")

	cfg.AMQP.URL = v.GetString("AMQP_URL")
	cfg.AMQP.Exchange = v.GetString("AMQP_EXCHANGE")

	cfg.Scheduler.OverdueSweepSchedule = v.GetString("OVERDUE_SWEEP_SCHEDULE")
	cfg.Share.TTL = v.GetDuration("SHARE_LINK_TTL")

	cfg.Admin.Email = v.GetString("ADMIN_EMAIL")
	cfg.Admin.Password = v.GetString("ADMIN_PASSWORD")
	cfg.Admin.Name = v.GetString("ADMIN_NAME")

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
		}
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT expiry must be positive")
	}
	switch c.Storage.Driver {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("STORAGE_LOCAL_DIR is required for local storage")
		}
	case "s3":
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_ENDPOINT and STORAGE_BUCKET are required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	if c.Share.TTL <= 0 {
		return fmt.Errorf("SHARE_LINK_TTL must be positive")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
