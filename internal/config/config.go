// Package config defines all configuration structures for quadrant.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// EngineConfig holds the rank-mapping engine's policy values.  The sentinel
// and magnitude floor encode business policy inherited from the catalog data
// model; they are configurable rather than hard-coded but the defaults are
// the canonical behavior.
type EngineConfig struct {
	// Sentinel is the raw value meaning "not applicable" on the secondary axes.
	Sentinel float64 `mapstructure:"sentinel"`

	// MagnitudeFloor excludes secondary-axis values with |v| below it under
	// profile B, in addition to the sentinel rule.
	MagnitudeFloor float64 `mapstructure:"magnitude_floor"`

	// DefaultMaxRank caps the number of distinct rank groups a recommendation
	// returns when the caller does not specify one.
	DefaultMaxRank int `mapstructure:"default_max_rank"`

	// DistanceDecimals is the rounding precision used both for tie-grouping
	// distances and for canonical coordinate keys.
	DistanceDecimals int `mapstructure:"distance_decimals"`

	// ContourSegments is the number of angular steps in a contour ring; the
	// emitted path has ContourSegments+1 points with first == last.
	ContourSegments int `mapstructure:"contour_segments"`

	// RecommendCacheTTL bounds how long a cached recommendation result stays
	// valid.  Cache entries are also keyed by projection version, so this is
	// a backstop rather than the primary invalidation mechanism.
	RecommendCacheTTL time.Duration `mapstructure:"recommend_cache_ttl"`
}

// Config is the root configuration structure for the whole service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Engine.DefaultMaxRank < 1 {
		return fmt.Errorf("config: engine.default_max_rank must be >= 1, got %d", c.Engine.DefaultMaxRank)
	}
	if c.Engine.DistanceDecimals < 0 || c.Engine.DistanceDecimals > 12 {
		return fmt.Errorf("config: engine.distance_decimals %d is out of range [0, 12]", c.Engine.DistanceDecimals)
	}
	if c.Engine.ContourSegments < 3 {
		return fmt.Errorf("config: engine.contour_segments must be >= 3, got %d", c.Engine.ContourSegments)
	}
	if c.Engine.MagnitudeFloor < 0 {
		return fmt.Errorf("config: engine.magnitude_floor must be >= 0, got %g", c.Engine.MagnitudeFloor)
	}

	return nil
}
