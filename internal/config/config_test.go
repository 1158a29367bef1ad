package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "mainsite_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "mainsite_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost:6379", cfg.RedisAddr())
	require.Equal(t, "uploads/temp", cfg.Upload.TempDir)
	require.Equal(t, 10*time.Minute, cfg.Upload.MaxAge)
	require.False(t, cfg.Auth.AllowRegistration)
}

func TestLoadConfig_RegistrationAndSeed(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("AUTH_ALLOW_REGISTRATION", "true")
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("ADMIN_EMAIL", "root@example.org")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.True(t, cfg.Auth.AllowRegistration)
	require.Equal(t, SeedConfig{Username: "root", Email: "root@example.org", Password: "s3cret"}, cfg.Seed)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestRedisAddr_EmptyWhenUnset(t *testing.T) {
	cfg := &Config{}
	require.Equal(t, "", cfg.RedisAddr())
}
