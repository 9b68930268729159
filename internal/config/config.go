// Package config loads scheduler settings from a YAML file with environment
// variable fallbacks for the log level and format.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"workforce-scheduler/internal/policies"
	"workforce-scheduler/internal/scheduling"
)

// Config is the full tool configuration.
type Config struct {
	Solver struct {
		Type                 string  `yaml:"type"` // heuristic, cpsat, hybrid
		TimeLimitSeconds     float64 `yaml:"time_limit_seconds"`
		OptimizationMode     string  `yaml:"optimization_mode"`
		CoverageWeight       int     `yaml:"coverage_weight"`
		DemandWeight         int     `yaml:"demand_weight"`
		UndercoverageWeight  int     `yaml:"undercoverage_weight"`
		OvercoverageWeight   int     `yaml:"overcoverage_weight"`
		SoftPreferenceWeight int     `yaml:"soft_preference_weight"`
	} `yaml:"solver"`

	Policies struct {
		MinWorkMinutes      int `yaml:"min_work_minutes"`
		MaxWorkMinutes      int `yaml:"max_work_minutes"`
		NoLunchThreshold    int `yaml:"no_lunch_threshold"`
		ShortLunchThreshold int `yaml:"short_lunch_threshold"`
		ShortLunchDuration  int `yaml:"short_lunch_duration"`
		LongLunchDuration   int `yaml:"long_lunch_duration"`
		OneBreakThreshold   int `yaml:"one_break_threshold"`
		TwoBreakThreshold   int `yaml:"two_break_threshold"`
		BreakDuration       int `yaml:"break_duration"`
	} `yaml:"policies"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	solver := scheduling.DefaultSolverConfig()
	cfg.Solver.Type = string(scheduling.SolverHybrid)
	cfg.Solver.TimeLimitSeconds = solver.TimeLimitSeconds
	cfg.Solver.OptimizationMode = string(solver.Mode)
	cfg.Solver.CoverageWeight = solver.CoverageWeight
	cfg.Solver.DemandWeight = solver.DemandWeight
	cfg.Solver.UndercoverageWeight = solver.UndercoverageWeight
	cfg.Solver.OvercoverageWeight = solver.OvercoverageWeight
	cfg.Solver.SoftPreferenceWeight = solver.SoftPreferenceWeight

	defaults := policies.Defaults()
	shift := defaults.Shift.(policies.DefaultShiftPolicy)
	lunch := defaults.Lunch.(policies.DefaultLunchPolicy)
	brk := defaults.Break.(policies.DefaultBreakPolicy)
	cfg.Policies.MinWorkMinutes = shift.MinWork
	cfg.Policies.MaxWorkMinutes = shift.MaxWork
	cfg.Policies.NoLunchThreshold = lunch.NoLunchThreshold
	cfg.Policies.ShortLunchThreshold = lunch.ShortLunchThreshold
	cfg.Policies.ShortLunchDuration = lunch.ShortLunchDuration
	cfg.Policies.LongLunchDuration = lunch.LongLunchDuration
	cfg.Policies.OneBreakThreshold = brk.OneBreakThreshold
	cfg.Policies.TwoBreakThreshold = brk.TwoBreakThreshold
	cfg.Policies.BreakDuration = brk.Duration

	cfg.Log.Level = getEnv("SCHEDULER_LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("SCHEDULER_LOG_FORMAT", "console")
	return cfg
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.PolicySet().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PolicySet materializes the configured policies.
func (c *Config) PolicySet() policies.Set {
	base := policies.Defaults()
	shift := base.Shift.(policies.DefaultShiftPolicy)
	lunch := base.Lunch.(policies.DefaultLunchPolicy)
	brk := base.Break.(policies.DefaultBreakPolicy)

	shift.MinWork = c.Policies.MinWorkMinutes
	shift.MaxWork = c.Policies.MaxWorkMinutes
	lunch.NoLunchThreshold = c.Policies.NoLunchThreshold
	lunch.ShortLunchThreshold = c.Policies.ShortLunchThreshold
	lunch.ShortLunchDuration = c.Policies.ShortLunchDuration
	lunch.LongLunchDuration = c.Policies.LongLunchDuration
	brk.OneBreakThreshold = c.Policies.OneBreakThreshold
	brk.TwoBreakThreshold = c.Policies.TwoBreakThreshold
	brk.Duration = c.Policies.BreakDuration

	return policies.Set{Shift: shift, Lunch: lunch, Break: brk}
}

// SolverConfig materializes the configured solver settings.
func (c *Config) SolverConfig() scheduling.SolverConfig {
	return scheduling.SolverConfig{
		TimeLimitSeconds:     c.Solver.TimeLimitSeconds,
		Mode:                 scheduling.OptimizationMode(c.Solver.OptimizationMode),
		CoverageWeight:       c.Solver.CoverageWeight,
		DemandWeight:         c.Solver.DemandWeight,
		UndercoverageWeight:  c.Solver.UndercoverageWeight,
		OvercoverageWeight:   c.Solver.OvercoverageWeight,
		SoftPreferenceWeight: c.Solver.SoftPreferenceWeight,
	}
}

// SolverType resolves the configured solver kind, defaulting to hybrid.
func (c *Config) SolverType() scheduling.SolverType {
	switch scheduling.SolverType(c.Solver.Type) {
	case scheduling.SolverHeuristic:
		return scheduling.SolverHeuristic
	case scheduling.SolverCPSAT:
		return scheduling.SolverCPSAT
	default:
		return scheduling.SolverHybrid
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
