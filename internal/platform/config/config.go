package config

import (
	"os"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean.
type Server struct {
	Addr            string
	DatabaseURL     string
	SweepInterval   time.Duration
	ShutdownTimeout time.Duration
}

const (
	defaultAddr            = ":8080"
	defaultSweepInterval   = 30 * time.Minute
	defaultShutdownTimeout = 10 * time.Second
)

// FromEnv builds a Server config from environment variables.
// An empty MOTORCOVER_DATABASE_URL selects the in-memory stores.
func FromEnv() Server {
	addr := os.Getenv("MOTORCOVER_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	sweepInterval := defaultSweepInterval
	if raw := os.Getenv("MOTORCOVER_SWEEP_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			sweepInterval = parsed
		}
	}

	return Server{
		Addr:            addr,
		DatabaseURL:     os.Getenv("MOTORCOVER_DATABASE_URL"),
		SweepInterval:   sweepInterval,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}
