package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a fully-populated config that passes Validate.
func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Database.User = "quadrant"
	return cfg
}

func TestValidate_DefaultsPlusUserAreValid(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad server port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"bad db port", func(c *Config) { c.Database.Port = 70000 }, "database.port"},
		{"missing db user", func(c *Config) { c.Database.User = "" }, "database.user"},
		{"missing db name", func(c *Config) { c.Database.DBName = "" }, "database.db_name"},
		{"bad max conns", func(c *Config) { c.Database.MaxConns = 0 }, "database.max_conns"},
		{"missing redis addr", func(c *Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"negative redis db", func(c *Config) { c.Redis.DB = -1 }, "redis.db"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad max rank", func(c *Config) { c.Engine.DefaultMaxRank = 0 }, "default_max_rank"},
		{"bad decimals", func(c *Config) { c.Engine.DistanceDecimals = 13 }, "distance_decimals"},
		{"bad segments", func(c *Config) { c.Engine.ContourSegments = 2 }, "contour_segments"},
		{"negative floor", func(c *Config) { c.Engine.MagnitudeFloor = -1 }, "magnitude_floor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CredentialsNotDefaulted(t *testing.T) {
	// ApplyDefaults intentionally leaves credentials empty; an explicit user
	// must be supplied before Validate passes.
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Error(t, cfg.Validate())
}
