package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/model"
)

func newViper(settings map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range settings {
		v.Set(k, val)
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, model.ModeFallback, cfg.Mode, "default mode is the safest one")
	assert.Equal(t, ScopeAll, cfg.Scope)
	assert.InDelta(t, 0.85, cfg.TauHigh, 1e-9)
	assert.InDelta(t, 0.55, cfg.TauLow, 1e-9)
	assert.Equal(t, 4, cfg.Workers)
	assert.Positive(t, cfg.ExtractorTimeout)
	assert.Positive(t, cfg.ResolveCacheTTL)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	_, err := Load(newViper(map[string]any{"mode": "KINDA_ON"}))
	assert.ErrorIs(t, err, common.ErrInvalidConfig,
		"a bad mode must fail startup, never default silently")
}

func TestLoadValidModes(t *testing.T) {
	for _, mode := range []string{"FALLBACK", "SHADOW", "DRYRUN", "ON"} {
		cfg, err := Load(newViper(map[string]any{"mode": mode}))
		require.NoError(t, err, mode)
		assert.Equal(t, model.Mode(mode), cfg.Mode)
	}
}

func TestLoadThresholdOrdering(t *testing.T) {
	tests := []struct {
		name    string
		high    float64
		low     float64
		wantErr bool
	}{
		{"defaults ok", 0.85, 0.55, false},
		{"equal thresholds ok", 0.7, 0.7, false},
		{"inverted", 0.5, 0.8, true},
		{"negative low", 0.8, -0.1, true},
		{"high above one", 1.2, 0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(map[string]any{
				"thresholds.tau_high": tt.high,
				"thresholds.tau_low":  tt.low,
			}))
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadRejectsBadScope(t *testing.T) {
	_, err := Load(newViper(map[string]any{"scope": "vip_users"}))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadRejectsNonPositiveRetention(t *testing.T) {
	_, err := Load(newViper(map[string]any{"audit.retention": "0s"}))
	assert.ErrorIs(t, err, common.ErrInvalidConfig,
		"zero retention would purge the entire audit log")

	_, err = Load(newViper(map[string]any{"audit.retention": "-24h"}))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadRejectsNonPositiveWorkers(t *testing.T) {
	_, err := Load(newViper(map[string]any{"pipeline.workers": 0}))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
