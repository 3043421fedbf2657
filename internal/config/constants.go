package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const StatsJobInterval = time.Minute

// Default rate limiting for authenticated dashboard calls
const DefaultRateLimitPerMin = 60

// Code generation
const (
	// CodeLength is fixed at creation; ids never change length afterwards.
	CodeLength = 6
	// MaxGenerateAttempts bounds the regenerate-on-collision loop. The id
	// space makes exhaustion astronomically unlikely, but the insert is the
	// true uniqueness gate and must be allowed to lose a handful of races.
	MaxGenerateAttempts = 5
)
