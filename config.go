package goChmod

import (
	"errors"
	"net/http"
	"time"
)

// Config holds Manager settings. Configs are copied into the Manager at
// Build time; later mutation of the caller's value has no effect.
type Config struct {
	Denial  DenialConfig  `mapstructure:"denial"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

/*
====================================
DENIAL CONFIG
====================================
*/

// DenialConfig controls the HTTP response written for rejected requests
// when no custom denial handler is installed.
type DenialConfig struct {
	// Status is used for denied requests that carry an identity.
	Status int `mapstructure:"status"`
	// UnauthenticatedStatus is used for denied requests without any identity.
	// Zero means "use Status".
	UnauthenticatedStatus int `mapstructure:"unauthenticated_status"`
	// Message overrides the response body. Empty means the lower-cased
	// status text.
	Message string `mapstructure:"message"`
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig controls caching of group membership verdicts.
type CacheConfig struct {
	// Enabled turns on the Redis tier; requires Builder.WithRedis.
	Enabled     bool          `mapstructure:"enabled"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	// TTL of Redis verdicts; zero stores them without expiry.
	TTL time.Duration `mapstructure:"ttl"`

	LocalEnabled bool          `mapstructure:"local_enabled"`
	LocalSize    int           `mapstructure:"local_size"`
	LocalTTL     time.Duration `mapstructure:"local_ttl"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	BufferSize int  `mapstructure:"buffer_size"`
	DropIfFull bool `mapstructure:"drop_if_full"`
	// AuditGranted also emits events for granted requests; denials are
	// always emitted when auditing is enabled.
	AuditGranted bool `mapstructure:"audit_granted"`
}

type MetricsConfig struct {
	Enabled                 bool `mapstructure:"enabled"`
	EnableLatencyHistograms bool `mapstructure:"enable_latency_histograms"`
}

// DefaultConfig returns the configuration used by [New] and [NewManager].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Denial: DenialConfig{
			Status:                http.StatusForbidden,
			UnauthenticatedStatus: http.StatusUnauthorized,
		},
		Cache: CacheConfig{
			Enabled:      false,
			RedisPrefix:  "chmod",
			TTL:          0,
			LocalEnabled: false,
			LocalSize:    10000,
			LocalTTL:     time.Minute,
		},
		Audit: AuditConfig{
			Enabled:      false,
			BufferSize:   1024,
			DropIfFull:   true,
			AuditGranted: false,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !isErrorStatus(c.Denial.Status) {
		return errors.New("Denial Status must be a 4xx or 5xx status code")
	}
	if c.Denial.UnauthenticatedStatus != 0 && !isErrorStatus(c.Denial.UnauthenticatedStatus) {
		return errors.New("Denial UnauthenticatedStatus must be 0 or a 4xx/5xx status code")
	}

	if c.Cache.TTL < 0 {
		return errors.New("Cache TTL must be >= 0")
	}
	if c.Cache.Enabled && c.Cache.RedisPrefix == "" {
		return errors.New("Cache RedisPrefix must not be empty when Cache is enabled")
	}
	if c.Cache.LocalEnabled {
		if c.Cache.LocalSize <= 0 {
			return errors.New("Cache LocalSize must be > 0 when LocalEnabled is true")
		}
		if c.Cache.LocalTTL < 0 {
			return errors.New("Cache LocalTTL must be >= 0")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

func isErrorStatus(code int) bool {
	return code >= 400 && code <= 599
}
