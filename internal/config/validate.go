package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// WeightTolerance is the allowed deviation of a weight set from 1.0
const WeightTolerance = 1e-6

// ErrInvalidConfig is matched by every ConfigError
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// ConfigError describes one rejected configuration field. It is fatal: a run
// must not produce output with a configuration that fails validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidConfig) match any ConfigError
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

var (
	hypeKeys       = []string{HypeMedia, HypeSocial, HypeVCBuzz, HypeConference, HypeSearch}
	buildKeys      = []string{BuildRevenue, BuildLogos, BuildPatents, BuildTalent, BuildMilestones}
	moatKeys       = []string{MoatRegulatory, MoatNetwork, MoatCapital, MoatData, MoatSwitching}
	convictionKeys = []string{ConvictionMomentum, ConvictionMoat, ConvictionCatalyst, ConvictionGap}
)

// Validate checks every weight set and threshold. All problems are reported
// together, joined; each one matches ErrInvalidConfig.
func (c PipelineConfig) Validate() error {
	var errs []error
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	for _, ws := range []struct {
		name    string
		weights map[string]float64
		keys    []string
	}{
		{"hype_weights", c.HypeWeights, hypeKeys},
		{"build_weights", c.BuildWeights, buildKeys},
		{"moat_weights", c.MoatWeights, moatKeys},
		{"conviction_weights", c.ConvictionWeights, convictionKeys},
	} {
		if err := validateWeightSet(ws.name, ws.weights, ws.keys); err != nil {
			errs = append(errs, err...)
		}
	}

	composite := map[string]float64{"hype": c.CompositeWeights.Hype, "build": c.CompositeWeights.Build}
	if err := validateWeightSet("composite_weights", composite, []string{"hype", "build"}); err != nil {
		errs = append(errs, err...)
	}

	checkThreshold := func(field string, v float64) bool {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			add(field, "must be finite, got %v", v)
			return false
		}
		if v < 0 {
			add(field, "must be non-negative, got %v", v)
			return false
		}
		return true
	}

	dt := c.DivergenceThresholds
	if checkThreshold("divergence_thresholds.low", dt.Low) && checkThreshold("divergence_thresholds.high", dt.High) {
		if dt.Low >= dt.High {
			add("divergence_thresholds", "low (%v) must be below high (%v)", dt.Low, dt.High)
		}
		if dt.High > 100 {
			add("divergence_thresholds.high", "must not exceed 100, got %v", dt.High)
		}
	}

	so := c.SecondOrderThresholds
	if checkThreshold("second_order_thresholds.dependency", so.Dependency) && so.Dependency > 1 {
		add("second_order_thresholds.dependency", "must be within [0,1], got %v", so.Dependency)
	}
	if checkThreshold("second_order_thresholds.correlation", so.Correlation) && so.Correlation > 1 {
		add("second_order_thresholds.correlation", "must be within [0,1], got %v", so.Correlation)
	}
	if checkThreshold("second_order_thresholds.primary_momentum", so.PrimaryMomentum) && so.PrimaryMomentum > 100 {
		add("second_order_thresholds.primary_momentum", "must be within [0,100], got %v", so.PrimaryMomentum)
	}

	rl := c.RiskLimits
	if checkThreshold("risk_limits.max_position_pct", rl.MaxPositionPct) && (rl.MaxPositionPct == 0 || rl.MaxPositionPct > 100) {
		add("risk_limits.max_position_pct", "must be within (0,100], got %v", rl.MaxPositionPct)
	}
	if checkThreshold("risk_limits.max_sector_pct", rl.MaxSectorPct) && rl.MaxSectorPct < rl.MaxPositionPct {
		add("risk_limits.max_sector_pct", "must be at least max_position_pct (%v), got %v", rl.MaxPositionPct, rl.MaxSectorPct)
	}
	if checkThreshold("risk_limits.max_correlation", rl.MaxCorrelation) && rl.MaxCorrelation > 1 {
		add("risk_limits.max_correlation", "must be within [0,1], got %v", rl.MaxCorrelation)
	}

	checkThreshold("recommendation.strong_buy_moat", c.Recommendation.StrongBuyMoat)
	checkThreshold("recommendation.short_build_cutoff", c.Recommendation.ShortBuildCutoff)
	checkThreshold("wave4_moat_threshold", c.Wave4MoatThreshold)
	checkThreshold("arr_threshold", c.ARRThreshold)
	if c.NearTermCatalystDays < 0 {
		add("near_term_catalyst_days", "must be non-negative, got %d", c.NearTermCatalystDays)
	}

	if len(c.PositionBuckets) == 0 {
		add("position_buckets", "at least one bucket is required")
	}
	for i, b := range c.PositionBuckets {
		field := fmt.Sprintf("position_buckets[%d]", i)
		if !checkThreshold(field+".min_pct", b.MinPct) || !checkThreshold(field+".max_pct", b.MaxPct) ||
			!checkThreshold(field+".min_conviction", b.MinConviction) {
			continue
		}
		if b.MinConviction > 1 {
			add(field+".min_conviction", "must be within [0,1], got %v", b.MinConviction)
			continue
		}
		if b.MinPct > b.MaxPct {
			add(field, "min_pct (%v) exceeds max_pct (%v)", b.MinPct, b.MaxPct)
		}
		if i > 0 {
			prev := c.PositionBuckets[i-1]
			if b.MinConviction >= prev.MinConviction {
				add(field, "min_conviction must decrease from bucket to bucket")
			} else if b.MinPct > prev.MinPct || b.MaxPct > prev.MaxPct {
				add(field, "position range must not grow as conviction falls")
			}
		}
	}

	for kind, lead := range c.CatalystLeads {
		field := "catalyst_leads." + string(kind)
		if lead.LeadMonths < 0 || lead.WindowMonths < 0 {
			add(field, "lead and window months must be non-negative")
		}
		for name, p := range map[string]float64{"confidence": lead.Confidence, "prob_6m": lead.Prob6M, "prob_12m": lead.Prob12M} {
			if math.IsNaN(p) || p < 0 || p > 1 {
				add(field+"."+name, "must be within [0,1], got %v", p)
			}
		}
	}

	for sector, b := range c.SectorBaselines {
		validateBaseline(&errs, "sector_baselines."+string(sector), b)
	}
	validateBaseline(&errs, "neutral_baseline", c.NeutralBaseline)

	if len(errs) == 0 {
		return nil
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].(*ConfigError).Field < errs[j].(*ConfigError).Field
	})
	return errors.Join(errs...)
}

func validateWeightSet(name string, weights map[string]float64, keys []string) []error {
	var errs []error
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	sum := 0.0
	for k, w := range weights {
		if !known[k] {
			errs = append(errs, &ConfigError{Field: name + "." + k, Reason: fmt.Sprintf("unknown weight, expected one of %s", strings.Join(keys, ", "))})
			continue
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			errs = append(errs, &ConfigError{Field: name + "." + k, Reason: fmt.Sprintf("must be a finite non-negative weight, got %v", w)})
			continue
		}
		sum += w
	}
	if len(errs) == 0 && math.Abs(sum-1.0) > WeightTolerance {
		errs = append(errs, &ConfigError{Field: name, Reason: fmt.Sprintf("weights sum to %.6f, expected 1.0", sum)})
	}
	return errs
}

func validateBaseline(errs *[]error, field string, b MoatBaseline) {
	for name, v := range map[string]float64{
		MoatRegulatory: b.Regulatory,
		MoatNetwork:    b.Network,
		MoatCapital:    b.Capital,
		MoatData:       b.Data,
		MoatSwitching:  b.Switching,
	} {
		if math.IsNaN(v) || v < 0 || v > 100 {
			*errs = append(*errs, &ConfigError{Field: field + "." + name, Reason: fmt.Sprintf("must be within [0,100], got %v", v)})
		}
	}
}
