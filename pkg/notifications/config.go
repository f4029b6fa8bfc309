package notifications

import "time"

// Config holds long-poll tuning. Load it with config.Load.
type Config struct {
	DefaultWait   time.Duration `env:"NOTIFY_DEFAULT_WAIT" envDefault:"30s"`
	MaxWait       time.Duration `env:"NOTIFY_MAX_WAIT" envDefault:"60s"`
	UserCacheSize int           `env:"NOTIFY_USER_CACHE_SIZE" envDefault:"10000"`
	UserCacheTTL  time.Duration `env:"NOTIFY_USER_CACHE_TTL" envDefault:"5m"`
}

// DefaultConfig returns the values used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		DefaultWait:   30 * time.Second,
		MaxWait:       60 * time.Second,
		UserCacheSize: 10000,
		UserCacheTTL:  5 * time.Minute,
	}
}

// waitFor turns a requested wait into the effective one.
// Zero means the default; anything above MaxWait is clamped.
func (c Config) waitFor(requested time.Duration) time.Duration {
	wait := requested
	if wait == 0 {
		wait = c.DefaultWait
	}
	if c.MaxWait > 0 && wait > c.MaxWait {
		wait = c.MaxWait
	}
	return wait
}
