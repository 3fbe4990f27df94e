package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "food_waste", cfg.Database.Name)
	assert.Equal(t, "root", cfg.Database.User)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 0, cfg.Database.MaxIdleConns)
	assert.True(t, cfg.Database.Seed)
	assert.False(t, cfg.Auth.Enabled())
	assert.False(t, cfg.Export.Enabled())
	assert.Equal(t, 5*time.Second, cfg.ChangePollInterval)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadSecretsFileOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	secrets := filepath.Join(dir, "secrets.toml")
	content := `
[database]
driver = "mysql"
host = "db.internal"
user = "dashboard"
password = "s3cret"
database = "donations"
`
	require.NoError(t, os.WriteFile(secrets, []byte(content), 0o600))

	t.Setenv("SECRETS_FILE", secrets)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "env-user")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "dashboard", cfg.Database.User)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "donations", cfg.Database.Name)
	assert.Equal(t, 3306, cfg.Database.Port)
}

func TestLoadWithoutSecretsFile(t *testing.T) {
	t.Setenv("SECRETS_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DB_DRIVER", "Postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoadRejectsBrokenSecretsFile(t *testing.T) {
	secrets := filepath.Join(t.TempDir(), "secrets.toml")
	require.NoError(t, os.WriteFile(secrets, []byte("[database\nhost="), 0o600))
	t.Setenv("SECRETS_FILE", secrets)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"sqlite ok", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"negative port", func(c *Config) { c.Database.Port = -1 }, true},
		{"zero rate limit", func(c *Config) { c.RateLimit = 0 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{RateLimit: 50, Database: DatabaseConfig{Driver: DriverSQLite}}
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
