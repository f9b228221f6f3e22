// Package config builds the immutable process configuration. Every flag the
// pipeline depends on (mode, thresholds, scope) is read exactly once at
// startup and threaded through explicitly, so routing and deciding stay pure
// and replayable; nothing reads ambient global state after load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/model"
)

// Scope selects which users the deterministic router applies to, supporting
// graduated rollout independent of mode.
type Scope string

// Scope constants.
const (
	ScopeAll      Scope = "all"
	ScopeNewUsers Scope = "new_users"
)

// Config is the immutable process configuration.
type Config struct {
	DBPath             string
	LogLevel           string
	LogFormat          string
	Mode               model.Mode
	Scope              Scope
	TauHigh            float64
	TauLow             float64
	CoachingMinHistory int
	Workers            int
	QueueSize          int
	ExtractorTimeout   time.Duration
	ResolveCacheTTL    time.Duration
	AuditRetention     time.Duration
}

// Load reads configuration from viper and validates it. Validation failures
// are fatal at startup; the process must not serve traffic on a bad mode or
// threshold ordering.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("mode", string(model.ModeFallback))
	v.SetDefault("scope", string(ScopeAll))
	v.SetDefault("thresholds.tau_high", 0.85)
	v.SetDefault("thresholds.tau_low", 0.55)
	v.SetDefault("coaching.min_history", 5)
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.queue_size", 256)
	v.SetDefault("extractor.timeout", "2s")
	v.SetDefault("resolve.cache_ttl", "5s")
	v.SetDefault("audit.retention", (90 * 24 * time.Hour).String())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	mode, err := model.ParseMode(v.GetString("mode"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	cfg := &Config{
		DBPath:             v.GetString("database.path"),
		LogLevel:           v.GetString("logging.level"),
		LogFormat:          v.GetString("logging.format"),
		Mode:               mode,
		Scope:              Scope(v.GetString("scope")),
		TauHigh:            v.GetFloat64("thresholds.tau_high"),
		TauLow:             v.GetFloat64("thresholds.tau_low"),
		CoachingMinHistory: v.GetInt("coaching.min_history"),
		Workers:            v.GetInt("pipeline.workers"),
		QueueSize:          v.GetInt("pipeline.queue_size"),
		ExtractorTimeout:   v.GetDuration("extractor.timeout"),
		ResolveCacheTTL:    v.GetDuration("resolve.cache_ttl"),
		AuditRetention:     v.GetDuration("audit.retention"),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the startup invariants.
func (c *Config) Validate() error {
	if c.Scope != ScopeAll && c.Scope != ScopeNewUsers {
		return fmt.Errorf("%w: unrecognized scope %q (want all or new_users)", common.ErrInvalidConfig, c.Scope)
	}
	if c.TauLow < 0 || c.TauHigh > 1 || c.TauLow > c.TauHigh {
		return fmt.Errorf("%w: thresholds must satisfy 0 <= tau_low <= tau_high <= 1, got low=%v high=%v",
			common.ErrInvalidConfig, c.TauLow, c.TauHigh)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: pipeline.workers must be positive, got %d", common.ErrInvalidConfig, c.Workers)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: pipeline.queue_size must be positive, got %d", common.ErrInvalidConfig, c.QueueSize)
	}
	if c.ExtractorTimeout <= 0 {
		return fmt.Errorf("%w: extractor.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.ResolveCacheTTL <= 0 {
		return fmt.Errorf("%w: resolve.cache_ttl must be positive", common.ErrInvalidConfig)
	}
	if c.AuditRetention <= 0 {
		// A non-positive retention would make purge delete the whole audit log.
		return fmt.Errorf("%w: audit.retention must be positive", common.ErrInvalidConfig)
	}
	return nil
}

// DefaultDBPath returns the standard database location.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "khoroch.db"
	}
	return filepath.Join(home, ".local", "share", "khoroch", "khoroch.db")
}
