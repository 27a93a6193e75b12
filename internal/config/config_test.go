package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:    ServerConfig{Mode: "release"},
			Database:  DatabaseConfig{Driver: "mysql"},
			JWT:       JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Directory: DirectoryConfig{AuthServiceURL: "http://auth:8080"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid release", func(*Config) {}, ""},
		{"debug skips release checks", func(c *Config) { c.Server.Mode = "debug"; c.JWT.Secret = "" }, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "unsupported database driver"},
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }, "JWT secret is too short"},
		{"missing directory", func(c *Config) { c.Directory.AuthServiceURL = "" }, "auth_service_url"},
		{"internal without token", func(c *Config) { c.Directory.UseInternal = true }, "internal_token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	yaml := "server:\n  mode: debug\ndatabase:\n  driver: sqlite\n  dbname: test.db\nstorage:\n  type: local\n  local_path: " + uploads + "\ntraining:\n  reject_applications_when_full: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Training.RejectApplicationsWhenFull)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.ReconcileCron)
	assert.Equal(t, 10, cfg.Directory.TimeoutSeconds)
	assert.DirExists(t, uploads)
}
