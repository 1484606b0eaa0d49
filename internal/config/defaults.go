package config

import "time"

// Default value constants.
const (
	DefaultServerPort = 8080

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "quadrant"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "quadrant:"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// DefaultSentinel marks a secondary-axis value as "not applicable".
	DefaultSentinel = -1

	// DefaultMagnitudeFloor additionally excludes near-zero secondary values
	// under axis profile B.
	DefaultMagnitudeFloor = 1e-4

	DefaultMaxRank          = 5
	DefaultDistanceDecimals = 5
	DefaultContourSegments  = 36
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.  Fields the
// caller already set are left unchanged so explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	// Redis.  DB is an int; 0 is a valid explicit value and also the default,
	// so it is left as-is.
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 10 * time.Minute
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// Engine.  Sentinel defaults to -1; a zero sentinel would collide with
	// legitimate raw values, so zero is treated as "not set".
	if cfg.Engine.Sentinel == 0 {
		cfg.Engine.Sentinel = DefaultSentinel
	}
	if cfg.Engine.MagnitudeFloor == 0 {
		cfg.Engine.MagnitudeFloor = DefaultMagnitudeFloor
	}
	if cfg.Engine.DefaultMaxRank == 0 {
		cfg.Engine.DefaultMaxRank = DefaultMaxRank
	}
	if cfg.Engine.DistanceDecimals == 0 {
		cfg.Engine.DistanceDecimals = DefaultDistanceDecimals
	}
	if cfg.Engine.ContourSegments == 0 {
		cfg.Engine.ContourSegments = DefaultContourSegments
	}
	if cfg.Engine.RecommendCacheTTL == 0 {
		cfg.Engine.RecommendCacheTTL = 5 * time.Minute
	}
}
