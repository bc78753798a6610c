package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timetracker/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.EnvDevelopment, cfg.Env)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "timetracker.db", cfg.DBPath)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", config.EnvProduction)
	t.Setenv("ADDR", ":9000")
	t.Setenv("DB_PATH", "/var/lib/timetracker/data.db")
	t.Setenv("ALLOWED_ORIGIN", "https://track.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.EnvProduction, cfg.Env)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "/var/lib/timetracker/data.db", cfg.DBPath)
	assert.Equal(t, []string{"https://track.example.com"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid", func(*config.Config) {}, false},
		{"unknown env", func(c *config.Config) { c.Env = "staging" }, true},
		{"missing addr", func(c *config.Config) { c.Addr = "" }, true},
		{"missing db path", func(c *config.Config) { c.DBPath = "" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Env:    config.EnvDevelopment,
				Addr:   ":8080",
				DBPath: "timetracker.db",
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
