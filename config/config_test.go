package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithPath_Defaults(t *testing.T) {
	cfg, err := LoadWithPath(writeEnv(t, "APP_NAME=djagency-test\n"))
	require.NoError(t, err)

	assert.Equal(t, "djagency-test", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL())
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "0 6 * * *", cfg.Scheduler.OverdueSweepSchedule)
	assert.Equal(t, 720*time.Hour, cfg.Share.TTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Twilio.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadWithPath_Overrides(t *testing.T) {
	cfg, err := LoadWithPath(writeEnv(t, `SERVER_PORT=9090
JWT_SECRET=super-secret
JWT_EXPIRY_HOURS=8
STORAGE_DRIVER=s3
STORAGE_ENDPOINT=minio:9000
STORAGE_BUCKET=media
STORAGE_PUBLIC_URL=https://cdn.example.com/media/
TWILIO_ACCOUNT_SID=AC123
TWILIO_AUTH_TOKEN=token
CORS_ALLOWED_ORIGINS=https://app.example.com, https://admin.example.com
SHARE_LINK_TTL=48h
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "super-secret", cfg.JWT.Secret)
	assert.Equal(t, 8*time.Hour, cfg.JWT.TTL())
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "https://cdn.example.com/media", cfg.Storage.PublicURL)
	assert.True(t, cfg.Twilio.Enabled())
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 48*time.Hour, cfg.Share.TTL)
}

func TestLoadWithPath_MissingFile(t *testing.T) {
	_, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Environment: "development"},
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{URL: "postgres://localhost/djagency"},
			JWT:      JWTConfig{Secret: "secret", ExpiryHours: 24},
			Storage:  StorageConfig{Driver: "local", LocalDir: "./data"},
			Share:    ShareConfig{TTL: time.Hour},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"no database", func(c *Config) { c.Database.URL = "" }},
		{"no secret", func(c *Config) { c.JWT.Secret = "" }},
		{"default secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = defaultJWTSecret
		}},
		{"non-positive expiry", func(c *Config) { c.JWT.ExpiryHours = 0 }},
		{"s3 without endpoint", func(c *Config) { c.Storage = StorageConfig{Driver: "s3", Bucket: "b"} }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "ftp" }},
		{"no share ttl", func(c *Config) { c.Share.TTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
