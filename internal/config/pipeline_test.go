package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/techrun/internal/models"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.30, cfg.HypeWeights[HypeVCBuzz])
	assert.Equal(t, 0.30, cfg.BuildWeights[BuildRevenue])
	assert.Equal(t, 0.4, cfg.CompositeWeights.Hype)
	assert.Equal(t, 0.6, cfg.CompositeWeights.Build)
	assert.Equal(t, 65.0, cfg.DivergenceThresholds.High)
	assert.Equal(t, 45.0, cfg.DivergenceThresholds.Low)
	assert.Equal(t, 5.0, cfg.RiskLimits.MaxPositionPct)
	assert.Equal(t, 0.70, cfg.RiskLimits.MaxCorrelation)
}

func TestDefaultReturnsFreshMaps(t *testing.T) {
	a := Default()
	a.HypeWeights[HypeMedia] = 0.99

	b := Default()
	assert.Equal(t, 0.25, b.HypeWeights[HypeMedia])
}

func TestLoadOverlaysDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "techrun.yaml")

	yamlData := []byte(`
divergence_thresholds:
  high: 70
  low: 40
risk_limits:
  max_position_pct: 4
  max_sector_pct: 12
  max_correlation: 0.6
sector_baselines:
  Robotics: {regulatory: 40, network: 40, capital: 60, data: 50, switching: 40}
`)
	require.NoError(t, os.WriteFile(configPath, yamlData, 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 70.0, cfg.DivergenceThresholds.High)
	assert.Equal(t, 40.0, cfg.DivergenceThresholds.Low)
	assert.Equal(t, 4.0, cfg.RiskLimits.MaxPositionPct)

	// untouched sections keep defaults
	assert.Equal(t, 0.25, cfg.HypeWeights[HypeMedia])
	assert.Equal(t, 0.70, cfg.SecondOrderThresholds.Dependency)

	robotics, known := cfg.Baseline("Robotics")
	assert.True(t, known)
	assert.Equal(t, 60.0, robotics.Capital)

	sixG, known := cfg.Baseline(models.SectorSixG)
	assert.True(t, known)
	assert.Equal(t, 85.0, sixG.Regulatory)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Wave4MoatThreshold, cfg.Wave4MoatThreshold)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidConfig), "read failure is not a validation failure")
}

func TestLoadReplacesWeightMaps(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "weights.yaml")
	yamlData := []byte(`
hype_weights:
  media: 0.5
  vc_buzz: 0.5
conviction_weights:
  momentum: 0.6
  moat: 0.4
`)
	require.NoError(t, os.WriteFile(configPath, yamlData, 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{HypeMedia: 0.5, HypeVCBuzz: 0.5}, cfg.HypeWeights)
	assert.Equal(t, map[string]float64{ConvictionMomentum: 0.6, ConvictionMoat: 0.4}, cfg.ConvictionWeights)
	assert.Equal(t, Default().BuildWeights, cfg.BuildWeights, "maps absent from the file keep defaults")
	assert.Equal(t, Default().MoatWeights, cfg.MoatWeights)
}

func TestLoadRejectsBadWeights(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("hype_weights:\n  media: 0.50\n"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "hype_weights", cfgErr.Field)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*PipelineConfig)
		field  string
	}{
		{"hype weights off by more than tolerance", func(c *PipelineConfig) { c.HypeWeights[HypeSearch] = 0.11 }, "hype_weights"},
		{"unknown build key", func(c *PipelineConfig) { c.BuildWeights["vibes"] = 0 }, "build_weights.vibes"},
		{"negative moat weight", func(c *PipelineConfig) { c.MoatWeights[MoatData] = -0.15 }, "moat_weights.data"},
		{"composite does not sum", func(c *PipelineConfig) { c.CompositeWeights.Build = 0.5 }, "composite_weights"},
		{"NaN dependency threshold", func(c *PipelineConfig) { c.SecondOrderThresholds.Dependency = math.NaN() }, "second_order_thresholds.dependency"},
		{"negative divergence threshold", func(c *PipelineConfig) { c.DivergenceThresholds.Low = -1 }, "divergence_thresholds.low"},
		{"inverted divergence thresholds", func(c *PipelineConfig) { c.DivergenceThresholds.Low = 70 }, "divergence_thresholds"},
		{"infinite primary momentum", func(c *PipelineConfig) { c.SecondOrderThresholds.PrimaryMomentum = math.Inf(1) }, "second_order_thresholds.primary_momentum"},
		{"correlation above one", func(c *PipelineConfig) { c.RiskLimits.MaxCorrelation = 1.5 }, "risk_limits.max_correlation"},
		{"zero max position", func(c *PipelineConfig) { c.RiskLimits.MaxPositionPct = 0 }, "risk_limits.max_position_pct"},
		{"sector cap below position cap", func(c *PipelineConfig) { c.RiskLimits.MaxSectorPct = 3 }, "risk_limits.max_sector_pct"},
		{"non-monotone buckets", func(c *PipelineConfig) { c.PositionBuckets[1].MinConviction = 0.9 }, "position_buckets[1]"},
		{"unreachable conviction floor", func(c *PipelineConfig) { c.PositionBuckets[0].MinConviction = 1.5 }, "position_buckets[0].min_conviction"},
		{"catalyst probability above one", func(c *PipelineConfig) {
			lead := c.CatalystLeads[models.CatalystCFOHire]
			lead.Prob12M = 1.2
			c.CatalystLeads[models.CatalystCFOHire] = lead
		}, "catalyst_leads.CFO_HIRE.prob_12m"},
		{"baseline above 100", func(c *PipelineConfig) { c.NeutralBaseline.Capital = 101 }, "neutral_baseline.capital"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestValidateWithinTolerance(t *testing.T) {
	cfg := Default()
	cfg.HypeWeights[HypeSearch] = 0.10 + 5e-7
	assert.NoError(t, cfg.Validate())
}

func TestMarshalRoundTripsThroughLoad(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	configPath := filepath.Join(t.TempDir(), "dump.yaml")
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, Default().CatalystLeads, cfg.CatalystLeads)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TECHRUN_HTTP_ADDR", ":9999")
	t.Setenv("TECHRUN_WORKERS", "3")
	t.Setenv("TECHRUN_REQUESTS_PER_SECOND", "not-a-number")

	env := LoadEnv()
	assert.Equal(t, ":9999", env.HTTPAddr)
	assert.Equal(t, 3, env.Workers)
	assert.Equal(t, 20.0, env.RequestsPerSec)
}
