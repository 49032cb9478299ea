// Package config loads the engine's BuildConfig from a YAML file layered
// with environment variable overrides, the way the teacher pack's config
// packages do (SPEC_FULL.md §10).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Tier selects how deep the pipeline runs for a build, §2/§4.16.
type Tier string

const (
	TierFast      Tier = "fast"      // L1 structural IR only
	TierBalanced  Tier = "balanced"  // + CFG/DFG/type resolution
	TierDeep      Tier = "deep"      // + SCCP/taint/full Symbol-Graph
	TierBootstrap Tier = "bootstrap" // first full build of a repository
	TierRepair    Tier = "repair"    // re-derive from a corrupted/partial snapshot
)

// LayerFlags toggles optional analysis layers independent of Tier, so a
// deployment can e.g. run Balanced without taint.
type LayerFlags struct {
	EnableSCCP  bool `yaml:"enable_sccp"`
	EnableTaint bool `yaml:"enable_taint"`
	EnableVec   bool `yaml:"enable_vector_index"`
}

// Thresholds collects the tunable numeric knobs referenced across modules,
// so they're configured in one place instead of scattered DefaultConfig()
// calls.
type Thresholds struct {
	FunctionLOCForSSA int `yaml:"function_loc_for_ssa"`
	MaxUnionSize       int `yaml:"max_union_size"`
	TaintContextDepth  int `yaml:"taint_context_depth"`
	TaintWidening      int `yaml:"taint_widening_threshold"`
	CompactionPollSecs int `yaml:"compaction_poll_seconds"`
}

// DefaultThresholds preserves every spec-mandated constant: 600 LOC SSA
// gate (§4.6), max_union_size 8 (§4.7, Open Question decision), taint
// defaults from taint.DefaultRealtimeConfig's k=0, compaction poll 1h
// (§4.14).
func DefaultThresholds() Thresholds {
	return Thresholds{
		FunctionLOCForSSA:  600,
		MaxUnionSize:       8,
		TaintContextDepth:  0,
		TaintWidening:      50,
		CompactionPollSecs: 3600,
	}
}

// BuildConfig is the top-level configuration consumed by the Build API
// (§6) and the orchestrator (§4.16).
type BuildConfig struct {
	Tier       Tier        `yaml:"tier"`
	Layers     LayerFlags  `yaml:"layers"`
	Thresholds Thresholds  `yaml:"thresholds"`
	IndexPath  string      `yaml:"index_path"`
	RepoRoot   string      `yaml:"repo_root"`
	Debug      bool        `yaml:"debug"`
}

// DefaultBuildConfig returns a Balanced-tier configuration with every
// layer enabled and the spec's default thresholds.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Tier:       TierBalanced,
		Layers:     LayerFlags{EnableSCCP: true, EnableTaint: true, EnableVec: true},
		Thresholds: DefaultThresholds(),
		IndexPath:  "./.codegraph/index.db",
	}
}

// Load reads a YAML config file at path (if it exists), loads a `.env` file
// from the current working directory into the process environment (teacher convention: godotenv
// populates os.Getenv rather than returning a separate map), then applies
// CODEGRAPH_* environment overrides on top. A missing path is not an
// error — callers get DefaultBuildConfig with only env overrides applied.
func Load(path string) (BuildConfig, error) {
	cfg := DefaultBuildConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return BuildConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fine, defaults stand
		default:
			return BuildConfig{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	_ = godotenv.Load() // best-effort; absence of .env is normal in prod

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *BuildConfig) {
	if v := os.Getenv("CODEGRAPH_TIER"); v != "" {
		cfg.Tier = Tier(strings.ToLower(v))
	}
	if v := os.Getenv("CODEGRAPH_INDEX_PATH"); v != "" {
		cfg.IndexPath = v
	}
	if v := os.Getenv("CODEGRAPH_REPO_ROOT"); v != "" {
		cfg.RepoRoot = v
	}
	if v := os.Getenv("CODEGRAPH_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v := os.Getenv("CODEGRAPH_MAX_UNION_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Thresholds.MaxUnionSize = n
		}
	}
	if v := os.Getenv("CODEGRAPH_ENABLE_TAINT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Layers.EnableTaint = b
		}
	}
	if v := os.Getenv("CODEGRAPH_ENABLE_SCCP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Layers.EnableSCCP = b
		}
	}
}

// Validate checks invariants Load doesn't enforce on its own (e.g. a
// config loaded programmatically rather than via Load).
func (c BuildConfig) Validate() error {
	switch c.Tier {
	case TierFast, TierBalanced, TierDeep, TierBootstrap, TierRepair:
	default:
		return fmt.Errorf("config: unknown tier %q", c.Tier)
	}
	if c.Thresholds.MaxUnionSize <= 0 {
		return fmt.Errorf("config: max_union_size must be positive, got %d", c.Thresholds.MaxUnionSize)
	}
	if c.IndexPath == "" {
		return fmt.Errorf("config: index_path must not be empty")
	}
	return nil
}
